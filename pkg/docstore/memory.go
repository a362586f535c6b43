package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"sync"
)

// Memory is an in-process Store. It keeps the tree as decoded JSON and
// applies the same rules as the Realtime Database: null deletes, empty
// objects and arrays are not stored, transactions are serialized.
type Memory struct {
	mu   sync.RWMutex
	root map[string]interface{}
	ids  *pushIDs
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{root: map[string]interface{}{}, ids: newPushIDs()}
}

func (m *Memory) Get(ctx context.Context, path string, v interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	m.mu.RLock()
	node := lookup(m.root, segs)
	raw, err := json.Marshal(node)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if node == nil {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (m *Memory) Set(ctx context.Context, path string, v interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	val, err := normalize(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(segs, val)
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	type write struct {
		segs []string
		val  interface{}
	}
	writes := make([]write, 0, len(fields))
	for k, v := range fields {
		sub, err := splitPath(k)
		if err != nil {
			return err
		}
		val, err := normalize(v)
		if err != nil {
			return err
		}
		full := append(append([]string{}, segs...), sub...)
		writes = append(writes, write{segs: full, val: val})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		m.put(w.segs, w.val)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(segs, nil)
	return nil
}

func (m *Memory) Push(ctx context.Context, path string, v interface{}) (string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", err
	}
	val, err := normalize(v)
	if err != nil {
		return "", err
	}
	key := m.ids.next()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(append(segs, key), val)
	return key, nil
}

func (m *Memory) QueryEqual(ctx context.Context, path, child string, value interface{}, v interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	want, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.RLock()
	matched := map[string]interface{}{}
	if children, ok := lookup(m.root, segs).(map[string]interface{}); ok {
		for key, c := range children {
			obj, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if reflect.DeepEqual(obj[child], want) {
				matched[key] = c
			}
		}
	}
	raw, err := json.Marshal(matched)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (m *Memory) Transaction(ctx context.Context, path string, fn UpdateFunc) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(lookup(m.root, segs))
	if err != nil {
		return err
	}
	out, err := fn(memoryNode(raw))
	if err != nil {
		return err
	}
	val, err := normalize(out)
	if err != nil {
		return err
	}
	m.put(segs, val)
	return nil
}

func (m *Memory) HealthCheck(ctx context.Context) error {
	return probe(ctx, m)
}

func (m *Memory) put(segs []string, val interface{}) {
	root, _ := setIn(m.root, segs, val).(map[string]interface{})
	if root == nil {
		root = map[string]interface{}{}
	}
	m.root = root
}

type memoryNode []byte

func (n memoryNode) Unmarshal(v interface{}) error {
	return json.Unmarshal(n, v)
}

func lookup(node interface{}, segs []string) interface{} {
	for _, s := range segs {
		switch t := node.(type) {
		case map[string]interface{}:
			node = t[s]
		case []interface{}:
			i, err := strconv.Atoi(s)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			node = t[i]
		default:
			return nil
		}
	}
	return node
}

func setIn(node interface{}, segs []string, val interface{}) interface{} {
	if len(segs) == 0 {
		return val
	}
	m, ok := node.(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
		if arr, isArr := node.([]interface{}); isArr {
			for i, e := range arr {
				if e != nil {
					m[strconv.Itoa(i)] = e
				}
			}
		}
	}
	child := setIn(m[segs[0]], segs[1:], val)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// normalize turns v into its decoded JSON form without empty containers
func normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return prune(out), nil
}

func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, c := range t {
			if pc := prune(c); pc == nil {
				delete(t, k)
			} else {
				t[k] = pc
			}
		}
		if len(t) == 0 {
			return nil
		}
	case []interface{}:
		if len(t) == 0 {
			return nil
		}
		for i := range t {
			t[i] = prune(t[i])
		}
	}
	return v
}
