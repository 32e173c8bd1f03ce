// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package json

import (
	"fmt"

	"github.com/kortschak/parsec/buffer"
)

// state is one distinguishable position in the JSON grammar, per
// spec.md §4.3. Some pairs (e.g. STR_BACKSLASH/KEY_BACKSLASH) exist
// only so that the state machine knows which scanning state to
// return to; their transition logic is otherwise identical and is
// shared through one helper (stringByte, escapeByte, unicodeByte).
type state int8

const (
	stNone state = iota // OBJ_NONE: pre-document
	stObjOpen
	stObjComma
	stObjColon
	stArrOpen
	stArrComma
	stStrOpen
	stStrChar
	stStrBackslash
	stStrProtected
	stStrUnicode
	stKeyOpen
	stKeyChar
	stKeyBackslash
	stKeyProtected
	stKeyUnicode
	stStrAskey
	stNumSign
	stNumZero
	stNumNonzero
	stNumLeaddigit
	stNumPoint
	stNumFracdigit
	stNumExp
	stNumExpsign
	stNumExpdigit
	stValTrue
	stValFalse
	stValNull
	stValInobj
	stValInarr
	stDone
)

// frame is an entry on the parser's context stack: the index of the
// token new children are attached to, and what should happen when the
// value currently being parsed in this context completes.
type frame struct {
	idx  int
	kind frameKind
}

type frameKind int8

const (
	frObject frameKind = iota
	frArray
	frKeyVal
)

// SyntaxError reports a JSON parse failure with 1-based line/column
// diagnostics, per spec.md §4.3/§6.
type SyntaxError struct {
	Msg    string
	Offset int
	Line   int
	Col    int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json: %s at line %d, column %d (offset %d)", e.Msg, e.Line, e.Col, e.Offset)
}

// State holds all mutable FSM state for one JSON document parse, kept
// as a value owned by the caller so it can be threaded across chunked
// PartialParse calls, per spec.md §9.
type State struct {
	cur   state
	stack []frame
	curTok int // index of the token currently being accumulated, or None

	pos  int
	line int
	col  int

	litCount int // progress through a literal keyword or \uXXXX escape
}

// NewState returns a State ready to parse a new document from offset
// 0. The document must begin with an OBJECT per spec.md §6.
func NewState() *State {
	return &State{
		cur:    stNone,
		curTok: None,
		line:   1,
		col:    1,
	}
}

// Reset reuses s for a new document, clearing the stack and position
// counters without reallocating, per spec.md §3's reset lifecycle.
func (s *State) Reset() {
	s.cur = stNone
	s.stack = s.stack[:0]
	s.curTok = None
	s.pos, s.line, s.col = 0, 1, 1
	s.litCount = 0
}

// Pos returns the absolute byte offset the state machine will consume
// next.
func (s *State) Pos() int { return s.pos }

// Done reports whether the document has been fully parsed.
func (s *State) Done() bool { return s.cur == stDone }

func isWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (s *State) errorf(format string, args ...interface{}) error {
	return &SyntaxError{
		Msg:    fmt.Sprintf(format, args...),
		Offset: s.pos,
		Line:   s.line,
		Col:    s.col,
	}
}

func (s *State) push(f frame) { s.stack = append(s.stack, f) }

func (s *State) top() frame {
	return s.stack[len(s.stack)-1]
}

func (s *State) pop() frame {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return f
}

// finishValue is called once a scalar or container value has just
// completed, to determine what the state machine should do next:
// return to awaiting a comma/closer in the enclosing array, or pop
// the transient key-value frame and return to awaiting a comma/closer
// in the enclosing object, or, if the stack has emptied, finish the
// document.
func (s *State) finishValue() state {
	if len(s.stack) == 0 {
		return stDone
	}
	switch s.top().kind {
	case frKeyVal:
		s.pop()
		return stValInobj
	case frArray:
		return stValInarr
	}
	panic("json: unreachable frame kind")
}

// step advances the state machine by one byte, located at absolute
// offset s.pos. tree receives any tokens opened or closed by this
// byte. reprocessed is true when step is being called recursively to
// reinterpret the same byte in a new state (the NUMBER double-close
// case of spec.md §4.3); step does not consult it, since the states a
// byte is reprocessed in never recurse again.
func (s *State) step(tree *Tree, b byte, reprocessed bool) error {
	switch s.cur {

	case stNone:
		if isWS(b) {
			return nil
		}
		if b != '{' {
			return s.errorf("document must begin with an object, got %q", b)
		}
		idx := tree.alloc(Object, None, s.pos)
		s.push(frame{idx: idx, kind: frObject})
		s.cur = stObjOpen
		return nil

	case stObjOpen, stObjComma:
		if isWS(b) {
			return nil
		}
		if b == '"' {
			idx := tree.alloc(Key, s.top().idx, s.pos+1)
			s.curTok = idx
			s.cur = stKeyOpen
			return nil
		}
		if b == '}' && s.cur == stObjOpen {
			f := s.pop()
			tree.setEnd(f.idx, s.pos)
			s.cur = s.finishValue()
			return nil
		}
		return s.errorf("expected object key or '}', got %q", b)

	case stObjColon:
		return s.enterValue(tree, b)

	case stArrOpen:
		if isWS(b) {
			return nil
		}
		if b == ']' {
			f := s.pop()
			tree.setEnd(f.idx, s.pos)
			s.cur = s.finishValue()
			return nil
		}
		return s.enterValue(tree, b)

	case stArrComma:
		return s.enterValue(tree, b)

	case stValInobj:
		if isWS(b) {
			return nil
		}
		switch b {
		case ',':
			s.cur = stObjComma
			return nil
		case '}':
			f := s.pop()
			tree.setEnd(f.idx, s.pos)
			s.cur = s.finishValue()
			return nil
		}
		return s.errorf("expected ',' or '}', got %q", b)

	case stValInarr:
		if isWS(b) {
			return nil
		}
		switch b {
		case ',':
			s.cur = stArrComma
			return nil
		case ']':
			f := s.pop()
			tree.setEnd(f.idx, s.pos)
			s.cur = s.finishValue()
			return nil
		}
		return s.errorf("expected ',' or ']', got %q", b)

	case stKeyOpen, stKeyChar, stKeyProtected:
		return s.stringByte(tree, b, true)
	case stStrOpen, stStrChar, stStrProtected:
		return s.stringByte(tree, b, false)

	case stKeyBackslash:
		return s.escapeByte(b, true)
	case stStrBackslash:
		return s.escapeByte(b, false)

	case stKeyUnicode:
		return s.unicodeByte(b, true)
	case stStrUnicode:
		return s.unicodeByte(b, false)

	case stStrAskey:
		if isWS(b) {
			return nil
		}
		if b != ':' {
			return s.errorf("expected ':' after object key, got %q", b)
		}
		s.push(frame{idx: s.curTok, kind: frKeyVal})
		s.cur = stObjColon
		return nil

	case stNumSign:
		if b == '0' {
			s.cur = stNumZero
			return nil
		}
		if b >= '1' && b <= '9' {
			s.cur = stNumNonzero
			return nil
		}
		return s.errorf("expected digit after '-', got %q", b)

	case stNumZero:
		if isDigit(b) {
			return s.errorf("leading zero in number followed by digit %q", b)
		}
		return s.numberContinue(tree, b)

	case stNumNonzero, stNumLeaddigit:
		if isDigit(b) {
			s.cur = stNumLeaddigit
			return nil
		}
		return s.numberContinue(tree, b)

	case stNumPoint:
		if isDigit(b) {
			s.cur = stNumFracdigit
			return nil
		}
		return s.errorf("expected digit after decimal point, got %q", b)

	case stNumFracdigit:
		if isDigit(b) {
			return nil
		}
		return s.numberContinue(tree, b)

	case stNumExp:
		if b == '+' || b == '-' {
			s.cur = stNumExpsign
			return nil
		}
		if isDigit(b) {
			s.cur = stNumExpdigit
			return nil
		}
		return s.errorf("expected sign or digit in exponent, got %q", b)

	case stNumExpsign:
		if isDigit(b) {
			s.cur = stNumExpdigit
			return nil
		}
		return s.errorf("expected digit in exponent, got %q", b)

	case stNumExpdigit:
		if isDigit(b) {
			return nil
		}
		return s.numberContinue(tree, b)

	case stValTrue:
		return s.literalByte(tree, b, "true", stValTrue)
	case stValFalse:
		return s.literalByte(tree, b, "false", stValFalse)
	case stValNull:
		return s.literalByte(tree, b, "null", stValNull)

	case stDone:
		return nil

	default:
		panic("json: unhandled state")
	}
}

// enterValue consumes the first byte of a value position (after ':'
// or at an array element start; an empty array's ']' is handled
// directly in the stArrOpen case before enterValue is reached).
func (s *State) enterValue(tree *Tree, b byte) error {
	if isWS(b) {
		return nil
	}
	parent := s.top().idx
	switch {
	case b == '"':
		idx := tree.alloc(String, parent, s.pos+1)
		s.curTok = idx
		s.cur = stStrOpen
		return nil
	case b == '{':
		idx := tree.alloc(Object, parent, s.pos)
		s.push(frame{idx: idx, kind: frObject})
		s.cur = stObjOpen
		return nil
	case b == '[':
		idx := tree.alloc(Array, parent, s.pos)
		s.push(frame{idx: idx, kind: frArray})
		s.cur = stArrOpen
		return nil
	case b == '-':
		idx := tree.alloc(Number, parent, s.pos)
		s.curTok = idx
		s.cur = stNumSign
		return nil
	case isDigit(b):
		idx := tree.alloc(Number, parent, s.pos)
		s.curTok = idx
		if b == '0' {
			s.cur = stNumZero
		} else {
			s.cur = stNumNonzero
		}
		return nil
	case b == 't':
		idx := tree.alloc(Boolean, parent, s.pos)
		s.curTok = idx
		s.litCount = 1
		s.cur = stValTrue
		return nil
	case b == 'f':
		idx := tree.alloc(Boolean, parent, s.pos)
		s.curTok = idx
		s.litCount = 1
		s.cur = stValFalse
		return nil
	case b == 'n':
		idx := tree.alloc(Null, parent, s.pos)
		s.curTok = idx
		s.litCount = 1
		s.cur = stValNull
		return nil
	}
	return s.errorf("unexpected character %q, expected a value", b)
}

// stringByte handles STR_OPEN/STR_CHAR/KEY_OPEN/KEY_CHAR: any byte
// other than the closing quote, backslash, or a control character
// continues the string.
func (s *State) stringByte(tree *Tree, b byte, isKey bool) error {
	switch {
	case b == '"':
		tree.setEnd(s.curTok, s.pos-1)
		if isKey {
			s.cur = stStrAskey
		} else {
			s.cur = s.finishValue()
		}
		return nil
	case b == '\\':
		if isKey {
			s.cur = stKeyBackslash
		} else {
			s.cur = stStrBackslash
		}
		return nil
	case b < 0x20:
		return s.errorf("control character %#02x in string", b)
	default:
		// Non-ASCII bytes are passed through unvalidated: UTF-8
		// validation is explicitly out of scope (spec.md §1).
		if isKey {
			s.cur = stKeyChar
		} else {
			s.cur = stStrChar
		}
		return nil
	}
}

func (s *State) escapeByte(b byte, isKey bool) error {
	switch b {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		if isKey {
			s.cur = stKeyProtected
		} else {
			s.cur = stStrProtected
		}
		return nil
	case 'u':
		s.litCount = 0
		if isKey {
			s.cur = stKeyUnicode
		} else {
			s.cur = stStrUnicode
		}
		return nil
	}
	return s.errorf("invalid escape character %q", b)
}

func (s *State) unicodeByte(b byte, isKey bool) error {
	if !isHex(b) {
		return s.errorf("invalid hex digit %q in \\u escape", b)
	}
	s.litCount++
	if s.litCount < 4 {
		return nil
	}
	if isKey {
		s.cur = stKeyProtected
	} else {
		s.cur = stStrProtected
	}
	return nil
}

// numberContinue is reached when a non-digit byte is seen while
// accumulating a number. A '.' after the integer part enters the
// fraction, and an 'e' or 'E' after the integer or fraction part
// enters the exponent. Any other byte performs the "double-close": the
// number token closes at this position, and the very same byte is then
// reprocessed against whatever state the enclosing container expects
// next (spec.md §4.3). The NUM_EXPDIGIT fallthrough bug noted in
// spec.md §9 is deliberately not replicated; every numeric state
// reaches this same, single close path.
func (s *State) numberContinue(tree *Tree, b byte) error {
	switch {
	case b == '.' && (s.cur == stNumZero || s.cur == stNumNonzero || s.cur == stNumLeaddigit):
		s.cur = stNumPoint
		return nil
	case (b == 'e' || b == 'E') && s.cur != stNumExpdigit:
		s.cur = stNumExp
		return nil
	}
	tree.setEnd(s.curTok, s.pos-1)
	s.cur = s.finishValue()
	return s.step(tree, b, true)
}

func (s *State) literalByte(tree *Tree, b byte, word string, self state) error {
	if b != word[s.litCount] {
		return s.errorf("invalid literal, expected %q, got %q at position %d of %q", word[s.litCount], b, s.litCount, word)
	}
	s.litCount++
	if s.litCount < len(word) {
		s.cur = self
		return nil
	}
	// word fully matched; this byte is the literal's own last letter,
	// so it closes the token directly, unlike numbers which need a
	// lookahead byte to find their end.
	tree.setEnd(s.curTok, s.pos)
	s.cur = s.finishValue()
	return nil
}
