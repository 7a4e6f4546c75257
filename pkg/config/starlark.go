package config

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// DefaultStarlarkTimeout bounds the execution of one Starlark document.
const DefaultStarlarkTimeout = 30 * time.Second

// starlarkRunner executes Starlark documents. Print is suppressed and
// execution is cancelled after the timeout or when ctx is done.
type starlarkRunner struct {
	timeout time.Duration
	globals map[string]interface{}
}

// run executes src and returns its public globals as a value tree.
func (s *starlarkRunner) run(ctx context.Context, filename string, src []byte) (map[string]interface{}, error) {
	thread := &starlark.Thread{
		Name:  "confmix",
		Print: func(_ *starlark.Thread, _ string) {},
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(evalCtx, func() {
		thread.Cancel(fmt.Sprintf("execution stopped: %v", context.Cause(evalCtx)))
	})
	defer stop()

	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
	for key, val := range s.globals {
		sv, err := toStarlark(val, key)
		if err != nil {
			return nil, fmt.Errorf("failed to convert globals: %w", err)
		}
		sv.Freeze()
		predeclared[key] = sv
	}

	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("starlark execution failed: %w", err)
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		if name[0] == '_' {
			continue
		}
		val := globals[name]
		if _, ok := val.(starlark.Callable); ok {
			continue
		}
		goVal, err := fromStarlark(val, name)
		if err != nil {
			return nil, fmt.Errorf("failed to convert document: %w", err)
		}
		out[name] = goVal
	}
	return out, nil
}

// toStarlark converts a decoded document value to Starlark. at names the
// value in errors.
func toStarlark(v interface{}, at string) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []string:
		elems := make([]starlark.Value, len(val))
		for i, e := range val {
			elems[i] = starlark.String(e)
		}
		return starlark.NewList(elems), nil
	case []interface{}:
		elems := make([]starlark.Value, len(val))
		for i, e := range val {
			sv, err := toStarlark(e, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return starlark.NewList(elems), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(keys))
		for _, k := range keys {
			sv, err := toStarlark(val[k], at+"."+k)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("%s: %w", at, err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", at, v)
	}
}

// fromStarlark converts a Starlark value to a document value. Integers become
// int64; tuples, lists and sets become lists; structs and dicts become maps.
func fromStarlark(v starlark.Value, at string) (interface{}, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("%s: integer %s out of range", at, val)
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.Dict:
		out := make(map[string]interface{}, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("%s: dict key %s is not a string", at, item[0])
			}
			e, err := fromStarlark(item[1], at+"."+string(key))
			if err != nil {
				return nil, err
			}
			out[string(key)] = e
		}
		return out, nil
	case *starlarkstruct.Struct:
		names := val.AttrNames()
		out := make(map[string]interface{}, len(names))
		for _, name := range names {
			attr, err := val.Attr(name)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", at, name, err)
			}
			e, err := fromStarlark(attr, at+"."+name)
			if err != nil {
				return nil, err
			}
			out[name] = e
		}
		return out, nil
	case starlark.Iterable:
		var out []interface{}
		iter := val.Iterate()
		defer iter.Done()
		var item starlark.Value
		for i := 0; iter.Next(&item); i++ {
			e, err := fromStarlark(item, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		if out == nil {
			out = []interface{}{}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: unsupported starlark type %s", at, v.Type())
	}
}
