package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// commentaryKeys are the metrics the model is asked to comment on.
var commentaryKeys = []string{"revenue", "netIncome", "grossMargins", "profitMargins", "peRatio", "pbRatio"}

var errNoCommentaryKeys = errors.New("no commentary keys in model output")

// stripCodeFence removes a leading ```lang line and a trailing ``` fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseCommentary decodes the model's per-metric commentary. Only a strict
// JSON object, optionally inside a code fence, is accepted, and it must carry
// at least one of the requested keys.
func parseCommentary(raw string) (map[string]string, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, errors.New("empty model output")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, fmt.Errorf("invalid commentary JSON: %w", err)
	}

	comments := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := commentString(v); ok {
			comments[k] = s
		}
	}

	for _, k := range commentaryKeys {
		if _, ok := comments[k]; ok {
			return comments, nil
		}
	}
	return nil, errNoCommentaryKeys
}

// repairDraft returns a best-effort JSON object rebuilt from invalid output,
// or "" when nothing object-shaped can be recovered. It never decides whether
// a reply is accepted.
func repairDraft(invalid string) string {
	repaired, err := jsonrepair.RepairJSON(stripCodeFence(invalid))
	if err != nil {
		return ""
	}
	repaired = strings.TrimSpace(repaired)
	var obj map[string]any
	if json.Unmarshal([]byte(repaired), &obj) != nil || len(obj) == 0 {
		return ""
	}
	return repaired
}

func commentString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// extractBullets returns the list items of a Markdown document as plain text.
// Documents without a list fall back to their top-level paragraphs.
func extractBullets(markdown string) []string {
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var bullets []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if item, ok := n.(*ast.ListItem); ok {
			if s := strings.TrimSpace(inlineText(item, source)); s != "" {
				bullets = append(bullets, s)
			}
		}
		return ast.WalkContinue, nil
	})
	if len(bullets) > 0 {
		return bullets
	}

	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.Paragraph); !ok {
			continue
		}
		if s := strings.TrimSpace(inlineText(c, source)); s != "" {
			bullets = append(bullets, s)
		}
	}
	return bullets
}

// inlineText flattens the text under n, skipping nested lists.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.List:
			continue
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			if sb.Len() > 0 && c.Type() == ast.TypeBlock {
				sb.WriteByte(' ')
			}
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}
