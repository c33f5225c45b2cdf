// Package factors holds the user maintained mapping of course name to the number
// of periods that make up one day of absence for that course.
package factors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidFactor = errors.New("factor must be a positive integer")
	ErrEmptyCourse   = errors.New("course name must not be empty")
)

// Factors is an insertion ordered mapping of course name -> periods per day.
// Every value it holds is > 0. The zero value is not usable, use New.
type Factors struct {
	keys   []string
	values map[string]int
}

func New() *Factors {
	return &Factors{values: map[string]int{}}
}

// Set adds or updates a course, new courses are appended to the end of the order.
func (f *Factors) Set(course string, periods int) error {
	if strings.TrimSpace(course) == "" {
		return ErrEmptyCourse
	}
	if periods <= 0 {
		return fmt.Errorf("%s: %w (got %d)", course, ErrInvalidFactor, periods)
	}
	if _, exists := f.values[course]; !exists {
		f.keys = append(f.keys, course)
	}
	f.values[course] = periods
	return nil
}

func (f *Factors) Get(course string) (int, bool) {
	periods, ok := f.values[course]
	return periods, ok
}

// Delete removes a course, it reports whether the course was present.
func (f *Factors) Delete(course string) bool {
	if _, ok := f.values[course]; !ok {
		return false
	}
	delete(f.values, course)
	for i, k := range f.keys {
		if k == course {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the course names in mapping order.
func (f *Factors) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *Factors) Len() int {
	return len(f.keys)
}

func (f *Factors) Clone() *Factors {
	out := New()
	for _, k := range f.keys {
		out.keys = append(out.keys, k)
		out.values[k] = f.values[k]
	}
	return out
}

// Equal reports whether both mappings hold the same courses, factors and order.
func (f *Factors) Equal(other *Factors) bool {
	if f.Len() != other.Len() {
		return false
	}
	for i, k := range f.keys {
		if other.keys[i] != k || other.values[k] != f.values[k] {
			return false
		}
	}
	return true
}

func (f *Factors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", f.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalString encodes a string without escaping html characters so that
// course names like "R&D" stay readable in the file.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(s)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys, the object
// is rejected as a whole when any value is not a positive integer or when a
// course appears twice.
func (f *Factors) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("factors: expected a json object")
	}

	out := New()
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return err
		}
		course, ok := tok.(string)
		if !ok {
			return fmt.Errorf("factors: expected a course name, got %v", tok)
		}

		var value json.Number
		err = decoder.Decode(&value)
		if err != nil {
			return fmt.Errorf("factors: %s: %w", course, err)
		}
		periods, err := value.Int64()
		if err != nil {
			return fmt.Errorf("factors: %s: %w (got %s)", course, ErrInvalidFactor, value)
		}
		if _, exists := out.values[course]; exists {
			return fmt.Errorf("factors: duplicate course %q", course)
		}
		err = out.Set(course, int(periods))
		if err != nil {
			return fmt.Errorf("factors: %w", err)
		}
	}

	tok, err = decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '}' {
		return fmt.Errorf("factors: unterminated json object")
	}
	_, err = decoder.Token()
	if err != io.EOF {
		return fmt.Errorf("factors: unexpected data after json object")
	}

	*f = *out
	return nil
}
