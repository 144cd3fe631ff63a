package tools

import (
	"github.com/shopchat/shopchat-backend/internal/gemini"
)

// Argument extraction helpers. Function-call arguments arrive as decoded
// JSON, so numbers are float64 and lists are []interface{}.

func argString(args gemini.Args, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt64(args gemini.Args, key string, def int64) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return def
}

func argInt(args gemini.Args, key string, def int) int {
	return int(argInt64(args, key, int64(def)))
}

func argList(args gemini.Args, key string) []interface{} {
	if v, ok := args[key].([]interface{}); ok {
		return v
	}
	return nil
}

func argStringList(args gemini.Args, key string) []string {
	var out []string
	for _, v := range argList(args, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
