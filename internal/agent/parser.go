package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"answerbot/internal/domain"
)

// Decision is the parsed outcome of the model's first round: which tool to
// call and the raw argument payload, still uncoerced.
type Decision struct {
	Tool    string
	RawArgs any
}

// ParseDecision extracts a tool decision from raw model output. Models return
// the `["tool_name", [args]]` shape with varying amounts of noise around it:
// code fences, single quotes instead of double, prose before or after the
// JSON. The pipeline is: strip fences, normalize quotes, strict decode, and
// on failure retry on the first top-level JSON array found in the text.
func ParseDecision(raw string) (*Decision, error) {
	text := stripCodeFences(raw)
	text = NormalizeQuotes(text)

	arr, err := decodeArray(text)
	if err != nil {
		start, end := findJSONBounds(text)
		if start < 0 {
			return nil, fmt.Errorf("%w: no JSON array in model response: %q", domain.ErrMalformedModelOutput, truncateForError(raw))
		}
		arr, err = decodeArray(text[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelOutput, err)
		}
	}

	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: empty decision array", domain.ErrMalformedModelOutput)
	}

	name, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: tool selector is %T, want string", domain.ErrToolNotFound, arr[0])
	}

	d := &Decision{Tool: strings.TrimSpace(name)}
	if len(arr) > 1 {
		d.RawArgs = arr[1]
	}
	return d, nil
}

// ParseFinal cleans up the model's second-round response. It goes through the
// same normalization path as round one; if the result decodes to a bare JSON
// string the unquoted text is returned, otherwise the normalized text is
// returned as-is.
func ParseFinal(raw string) string {
	text := strings.TrimSpace(stripCodeFences(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			return s
		}
	}
	return text
}

func decodeArray(text string) ([]any, error) {
	var arr []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &arr); err != nil {
		return nil, err
	}
	return arr, nil
}

// NormalizeQuotes converts single quotes to double quotes except inside
// words, so contractions like "what's" survive while 'Paris' becomes
// "Paris". A quote is kept only when a word character sits on both sides.
// The transformation is idempotent.
func NormalizeQuotes(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	for i, r := range runes {
		if r != '\'' {
			out[i] = r
			continue
		}
		prevWord := i > 0 && isWordRune(runes[i-1])
		nextWord := i+1 < len(runes) && isWordRune(runes[i+1])
		if prevWord && nextWord {
			out[i] = r
		} else {
			out[i] = '"'
		}
	}
	return string(out)
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// stripCodeFences removes a wrapping markdown code fence, with or without a
// language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) >= 3 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return s
}

// findJSONBounds locates the first top-level JSON array in s, skipping over
// string contents and escapes. Returns start and end+1, or (-1, -1).
func findJSONBounds(s string) (int, int) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return -1, -1
	}

	depth := 0
	inStr := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if ch == '\\' {
				i++
				continue
			}
			if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}

func truncateForError(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
