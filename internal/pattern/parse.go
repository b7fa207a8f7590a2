package pattern

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/rational"
)

// Parse builds a pattern tree from one mini-notation string literal (spec
// §4.3's "Pattern parser"): whitespace-separated terms form a Sequence,
// `[ ]` groups nest a sub-sequence (or a chord, if its contents are
// comma-separated), `< >` alternates one child per cycle, `{ , }` layers
// several patterns in parallel, and the postfix suffixes `*N`, `@N`,
// `(...)`, and Euclidean `(n,k[,r])` decorate the preceding atom.
//
// Grounded on the recursive-descent style of other_examples/ DSL parsers
// (mzacho-melrose, ako-backing-tracks' strudel-generator) generalized to
// this grammar; no teacher-repo component parses a language of its own.
func Parse(src string) (Node, error) {
	p := &patParser{runes: []rune(src)}
	p.skipSpace()
	seq, err := p.parseSequence("")
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return nil, cerr.New(cerr.KindParse, "unexpected %q in pattern %q", string(p.runes[p.pos]), src)
	}
	return seq, nil
}

type patParser struct {
	runes []rune
	pos   int
}

func (p *patParser) atEnd() bool { return p.pos >= len(p.runes) }

func (p *patParser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.runes[p.pos]
}

func (p *patParser) skipSpace() {
	for !p.atEnd() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

// parseSequence reads space-separated terms until it hits one of stop
// (a rune in the string) or EOF, wrapping the result in a SequenceNode (a
// lone term is returned unwrapped since its BeatsPerCycle already holds).
func (p *patParser) parseSequence(stop string) (Node, error) {
	var terms []Node
	for {
		p.skipSpace()
		if p.atEnd() || strings.ContainsRune(stop, p.peek()) {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return NewRest(rational.One), nil
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return NewSequence(terms), nil
}

// parseCommaSeparated splits the input at top-level commas (it must be
// called with the parser positioned just inside an opening bracket) and
// parses each segment as its own term sequence, returning when it hits a
// rune in stop.
func (p *patParser) parseCommaSeparated(stop string) ([]Node, error) {
	var parts []Node
	for {
		part, err := p.parseSequence(stop + ",")
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		p.skipSpace()
		if p.atEnd() || strings.ContainsRune(stop, p.peek()) {
			break
		}
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return parts, nil
}

func (p *patParser) parseTerm() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(atom)
}

func (p *patParser) parsePostfix(n Node) (Node, error) {
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			p.skipSpace()
			count, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			n = NewRepeat(n, count)
		case '@':
			p.pos++
			p.skipSpace()
			count, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			n = NewWeight(count, n)
		case '(':
			p.pos++
			args, err := p.parseArgNumbers()
			if err != nil {
				return nil, err
			}
			if len(args) == 1 {
				v := args[0]
				if v <= 1 {
					v = v * 127
				}
				vn, err := NewVelocity(int(v+0.5), n)
				if err != nil {
					return nil, err
				}
				n = vn
			} else if len(args) == 2 || len(args) == 3 {
				rotate := 0
				if len(args) == 3 {
					rotate = int(args[2])
				}
				n = NewEuclidean(n, int(args[0]), int(args[1]), rotate)
			} else {
				return nil, cerr.New(cerr.KindParse, "expected 1-3 numbers in pattern postfix, got %d", len(args))
			}
		default:
			return n, nil
		}
	}
}

// parseArgNumbers reads a comma-separated list of numbers up to a closing
// ')', having already consumed the opening '('.
func (p *patParser) parseArgNumbers() ([]float64, error) {
	var nums []float64
	for {
		p.skipSpace()
		if p.peek() == ')' {
			p.pos++
			break
		}
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		return nil, cerr.New(cerr.KindParse, "expected ',' or ')' in pattern argument list")
	}
	return nums, nil
}

func (p *patParser) parseInt() (int, error) {
	n, err := p.parseNumber()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (p *patParser) parseNumber() (float64, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for !p.atEnd() && (unicode.IsDigit(p.peek()) || p.peek() == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, cerr.New(cerr.KindParse, "expected a number in pattern")
	}
	v, err := strconv.ParseFloat(string(p.runes[start:p.pos]), 64)
	if err != nil {
		return 0, cerr.New(cerr.KindParse, "invalid number %q in pattern", string(p.runes[start:p.pos]))
	}
	return v, nil
}

func (p *patParser) parseAtom() (Node, error) {
	p.skipSpace()
	switch p.peek() {
	case '_':
		p.pos++
		return NewRest(rational.One), nil
	case '[':
		p.pos++
		return p.parseBracketGroup()
	case '<':
		p.pos++
		children, err := p.collectTerms(">")
		if err != nil {
			return nil, err
		}
		if p.peek() != '>' {
			return nil, cerr.New(cerr.KindParse, "unterminated '<' in pattern")
		}
		p.pos++
		return NewAlternate(children), nil
	case '{':
		p.pos++
		layers, err := p.parseCommaSeparated("}")
		if err != nil {
			return nil, err
		}
		if p.peek() != '}' {
			return nil, cerr.New(cerr.KindParse, "unterminated '{' in pattern")
		}
		p.pos++
		length := rational.One
		if len(layers) > 0 {
			length = layers[0].BeatsPerCycle()
		}
		return NewPolyrhythm(layers, length), nil
	default:
		return p.parseToken()
	}
}

// parseBracketGroup handles `[ ... ]`: a top-level comma makes it a
// chord (every comma-separated part must be a single note token); no
// comma makes it a nested sequence.
func (p *patParser) parseBracketGroup() (Node, error) {
	save := p.pos
	firstComma := p.findTopLevelComma()
	p.pos = save
	if !firstComma {
		seq, err := p.parseSequence("]")
		if err != nil {
			return nil, err
		}
		if p.peek() != ']' {
			return nil, cerr.New(cerr.KindParse, "unterminated '[' in pattern")
		}
		p.pos++
		return seq, nil
	}
	parts, err := p.parseCommaSeparated("]")
	if err != nil {
		return nil, err
	}
	if p.peek() != ']' {
		return nil, cerr.New(cerr.KindParse, "unterminated '[' in pattern")
	}
	p.pos++
	var beats rational.T
	notes := make([]notemodel.Note, 0, len(parts))
	for _, part := range parts {
		sn, ok := part.(*StepNode)
		if !ok || sn.Note == nil {
			return nil, cerr.New(cerr.KindPattern, "chord group elements must be note literals")
		}
		notes = append(notes, *sn.Note)
		beats = sn.Beats
	}
	chord, err := notemodel.NewChord(notes)
	if err != nil {
		return nil, err
	}
	return NewChordNode(beats, chord), nil
}

// findTopLevelComma scans from the current position (just past '[') to
// see whether a ',' appears before the matching ']', ignoring commas
// nested inside further brackets.
func (p *patParser) findTopLevelComma() bool {
	depth := 0
	for i := p.pos; i < len(p.runes); i++ {
		switch p.runes[i] {
		case '[', '<', '{', '(':
			depth++
		case ']', '>', '}', ')':
			if depth == 0 {
				return false
			}
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// collectTerms reads space-separated single terms (used by `< >`, where
// each alternative is its own atom+postfix, not a nested sequence).
func (p *patParser) collectTerms(stop string) ([]Node, error) {
	var terms []Node
	for {
		p.skipSpace()
		if p.atEnd() || strings.ContainsRune(stop, p.peek()) {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func isTokenBoundary(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("[]<>{}()*@,_", r)
}

// parseToken reads a bare word (note or drum name) up to the next
// boundary rune.
func (p *patParser) parseToken() (Node, error) {
	start := p.pos
	for !p.atEnd() && !isTokenBoundary(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return nil, cerr.New(cerr.KindParse, "unexpected character %q in pattern", string(p.peek()))
	}
	lit := string(p.runes[start:p.pos])
	if n, err := notemodel.Parse(lit); err == nil {
		return NewNoteStep(rational.One, n), nil
	}
	return NewDrumStep(rational.One, lit), nil
}
