package vm

const (
	STACK_LIMIT = 4096 // Default maximum call depth
)

// Stack is the call stack of routine instance indices.
// The bottom entry is the root instance.
type Stack struct {
	Data  []int
	Limit int // Maximum depth; STACK_LIMIT if zero.
}

func (s *Stack) Push(value int) {
	s.Data = append(s.Data, value)
}

func (s *Stack) Pop() (value int, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	limit := s.Limit
	if limit == 0 {
		limit = STACK_LIMIT
	}
	return len(s.Data) >= limit
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value int, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
