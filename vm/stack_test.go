package vm

import (
	"errors"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()

	s.Push(FromInt(1))
	s.Push(FromInt(2))
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	v, err := s.Pop()
	if err != nil || v.Int() != 2 {
		t.Fatalf("Pop = (%s, %v), want 2", v, err)
	}
	v, err = s.Pop()
	if err != nil || v.Int() != 1 {
		t.Fatalf("Pop = (%s, %v), want 1", v, err)
	}

	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Pop on empty = %v, want ErrStackUnderflow", err)
	}
}

func TestStackFromTop(t *testing.T) {
	s := NewStack()
	for i := int64(1); i <= 3; i++ {
		s.Push(FromInt(i))
	}

	for dist, want := range map[int]int64{1: 3, 2: 2, 3: 1} {
		v, err := s.FromTop(dist)
		if err != nil || v.Int() != want {
			t.Errorf("FromTop(%d) = (%s, %v), want %d", dist, v, err, want)
		}
	}

	if _, err := s.FromTop(4); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("FromTop(4) = %v, want ErrStackUnderflow", err)
	}
	if _, err := s.FromTop(0); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("FromTop(0) = %v, want ErrStackUnderflow", err)
	}
}

func TestStackTruncateTo(t *testing.T) {
	s := NewStack()
	for i := int64(0); i < 5; i++ {
		s.Push(FromInt(i))
	}

	s.TruncateTo(2)
	if s.Len() != 2 {
		t.Fatalf("Len after truncate = %d, want 2", s.Len())
	}
	// Truncating to a larger height is a no-op, not growth.
	s.TruncateTo(10)
	if s.Len() != 2 {
		t.Fatalf("Len after no-op truncate = %d, want 2", s.Len())
	}
}
