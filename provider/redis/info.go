package redis

import (
	"bufio"
	"strings"

	pr "github.com/unkn0wn-root/checkcache/provider"
)

// ParseInfo turns the text reply of INFO into grouped sections.
//
//	# Memory
//	used_memory:1000
//	# Keyspace
//	db0:keys=120,expires=3,avg_ttl=0
//
// Lines before the first header land in an unnamed section.
func ParseInfo(raw string) pr.Info {
	var (
		out pr.Info
		cur *pr.Section
	)
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			out = append(out, pr.Section{Name: strings.TrimSpace(strings.TrimPrefix(line, "#"))})
			cur = &out[len(out)-1]
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if cur == nil {
			out = append(out, pr.Section{})
			cur = &out[len(out)-1]
		}
		cur.Fields = append(cur.Fields, pr.Field{Key: k, Value: v})
	}
	return out
}
