package system

import (
	"runtime"
)

// SecureBytes wraps a byte slice with automatic zeroing to prevent
// sensitive data from remaining in memory longer than necessary.
type SecureBytes struct {
	data []byte
}

// NewSecureBytes creates a new SecureBytes instance from the given data.
// The provided byte slice is used directly (not copied), so the caller
// should not retain or modify it after passing it to this function.
func NewSecureBytes(data []byte) *SecureBytes {
	sb := &SecureBytes{data: data}

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Zeroize()
	})

	return sb
}

// Bytes returns the underlying byte slice.
// The caller should not retain this slice or store it elsewhere.
func (s *SecureBytes) Bytes() []byte {
	if s == nil || s.data == nil {
		return nil
	}
	return s.data
}

// TrimNewline drops one trailing "\n" or "\r\n" in place, as left behind by
// line-oriented readers.
func (s *SecureBytes) TrimNewline() {
	if s == nil {
		return
	}
	n := len(s.data)
	if n > 0 && s.data[n-1] == '\n' {
		s.data[n-1] = 0
		n--
		if n > 0 && s.data[n-1] == '\r' {
			s.data[n-1] = 0
			n--
		}
	}
	s.data = s.data[:n]
}

// Zeroize explicitly zeros the underlying memory.
// This should be called via defer when the sensitive data is no longer needed.
func (s *SecureBytes) Zeroize() {
	if s == nil || s.data == nil {
		return
	}

	clear(s.data[:cap(s.data)])
	s.data = nil
}

// Len returns the length of the underlying data.
func (s *SecureBytes) Len() int {
	if s == nil || s.data == nil {
		return 0
	}
	return len(s.data)
}
