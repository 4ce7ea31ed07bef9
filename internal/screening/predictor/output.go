package predictor

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const maxDecodeAttempts = 256

// maxModelScore adalah batas atas ml_score yang diterima; model saat ini hanya memberi 0, 8, atau 15.
const maxModelScore = 100

// extractJSON mencari objek JSON pertama yang valid di antara log keluaran skrip.
func extractJSON(out []byte) (map[string]json.RawMessage, bool) {
	attempts := 0
	for i := 0; i < len(out) && attempts < maxDecodeAttempts; i++ {
		if out[i] != '{' {
			continue
		}
		attempts++
		dec := json.NewDecoder(bytes.NewReader(out[i:]))
		dec.UseNumber()
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err == nil {
			return obj, true
		}
	}
	return nil, false
}

// parseResult menerjemahkan objek hasil prediktor menjadi Outcome.
func parseResult(obj map[string]json.RawMessage) Outcome {
	status := rawString(obj["status"])
	if status != "success" {
		msg := rawString(obj["message"])
		if msg == "" {
			msg = "status prediktor: " + status
		}
		return Failed(FailureProcessError, msg)
	}

	prob := rawText(obj["probability"])
	if prob == "" {
		prob = "0"
	}
	label := rawString(obj["ai_analysis"])
	if label == "" {
		label = LabelNone
	}
	score, ok := rawScore(obj["ml_score"])
	if !ok {
		return Failed(FailureInvalidOutput, "ml_score di luar rentang")
	}
	return Outcome{
		Score:       score,
		Probability: prob,
		Label:       label,
	}
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// rawText mempertahankan angka atau string apa adanya, tanpa normalisasi.
func rawText(raw json.RawMessage) string {
	t := strings.TrimSpace(string(raw))
	if t == "" || t == "null" {
		return ""
	}
	if strings.HasPrefix(t, `"`) {
		return rawString(raw)
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return t
	}
	return ""
}

// rawScore membaca ml_score (angka atau string angka); selain itu 0. Nilai negatif menjadi 0.
// Nilai di atas maxModelScore ditolak (ok=false).
func rawScore(raw json.RawMessage) (int, bool) {
	t := rawText(raw)
	if t == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0, true
	}
	if math.IsInf(f, 1) || f > maxModelScore {
		return 0, false
	}
	return int(math.Round(f)), true
}
