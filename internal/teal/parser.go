package teal

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

const pragmaPrefix = "#pragma"

// Listing is the flat result of parsing one program.
type Listing struct {
	Instructions []*Instruction
	// Labels maps a label name to the index of the instruction that follows
	// its definition. A label at the end of the file maps to len(Instructions).
	Labels map[string]int
	// Version is the `#pragma version` value, 0 when the program has none.
	Version uint64
}

// Parse decodes TEAL source into a Listing. Branch targets are not resolved
// here; labels may be referenced before they are defined.
func Parse(filename string, src []byte) (*Listing, error) {
	listing := &Listing{Labels: make(map[string]int)}

	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), len(src)+1)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if strings.HasPrefix(text, pragmaPrefix) {
			if err := parsePragma(filename, line, text, listing); err != nil {
				return nil, err
			}
			continue
		}

		fields, _ := SplitComment(text)
		if len(fields) == 0 {
			continue
		}

		if label, ok := labelName(fields[0]); ok {
			if _, dup := listing.Labels[label]; dup {
				return nil, Errorf(filename, line, ErrDuplicateLabel, "%s", label)
			}
			listing.Labels[label] = len(listing.Instructions)
			fields = fields[1:]
			if len(fields) == 0 {
				continue
			}
		}

		ins, err := decode(filename, line, fields)
		if err != nil {
			return nil, err
		}
		listing.Instructions = append(listing.Instructions, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Filename: filename, Line: line + 1, Err: err}
	}

	return listing, nil
}

func decode(filename string, line int, fields []string) (*Instruction, error) {
	spec, ok := LookupOp(fields[0])
	if !ok {
		return nil, Errorf(filename, line, ErrUnknownOpcode, "%s", fields[0])
	}

	args := fields[1:]
	if !spec.acceptsImmediates(len(args)) {
		switch spec.Kind {
		case KindBranch, KindCondBranch, KindCallsub:
			return nil, Errorf(filename, line, ErrMissingLabel, "%s", spec.Name)
		}
		return nil, Errorf(filename, line, ErrOperandCount, "%s takes %s, got %d",
			spec.Name, describeArity(spec), len(args))
	}

	return newInstruction(spec, args, line), nil
}

func describeArity(spec OpSpec) string {
	switch {
	case spec.MaxImm == variadic:
		return "at least " + strconv.Itoa(spec.MinImm)
	case spec.MinImm == spec.MaxImm:
		return strconv.Itoa(spec.MinImm)
	default:
		return strconv.Itoa(spec.MinImm) + " to " + strconv.Itoa(spec.MaxImm)
	}
}

func parsePragma(filename string, line int, text string, listing *Listing) error {
	fields, _ := SplitComment(text)
	if len(fields) < 2 {
		return Errorf(filename, line, ErrInvalidPragma, "missing pragma name")
	}
	if fields[1] != "version" {
		// other pragmas carry assembler hints only
		return nil
	}
	if len(fields) != 3 {
		return Errorf(filename, line, ErrInvalidPragma, "version requires one value")
	}
	version, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Errorf(filename, line, ErrInvalidPragma, "bad version %q", fields[2])
	}
	listing.Version = version
	return nil
}

func labelName(field string) (string, bool) {
	if len(field) < 2 || !strings.HasSuffix(field, ":") {
		return "", false
	}
	return field[:len(field)-1], true
}

var spaces = [256]uint8{'\t': 1, ' ': 1}

// SplitComment splits a source line into whitespace separated fields and
// returns the trailing `//` comment, if any. String literals and base64(...)
// groups are kept in one field and may contain `//`.
func SplitComment(line string) ([]string, string) {
	var fields []string

	i := 0
	for i < len(line) && spaces[line[i]] != 0 {
		i++
	}

	start := i
	inString := false
	inBase64 := false
	for i < len(line) {
		if spaces[line[i]] == 0 {
			switch line[i] {
			case '"':
				if !inString {
					if i == start {
						inString = true
					}
				} else if line[i-1] != '\\' {
					inString = false
				}
			case '/':
				if i < len(line)-1 && line[i+1] == '/' && !inBase64 && !inString {
					if start != i {
						fields = append(fields, line[start:i])
					}
					return fields, strings.TrimSpace(line[i:])
				}
			case '(':
				prefix := line[start:i]
				if prefix == "base64" || prefix == "b64" {
					inBase64 = true
				}
			case ')':
				inBase64 = false
			}
			i++
			continue
		}
		if !inString {
			field := line[start:i]
			fields = append(fields, field)
			if field == "base64" || field == "b64" {
				inBase64 = true
			} else if inBase64 {
				inBase64 = false
			}
		}
		i++

		if !inString {
			for i < len(line) && spaces[line[i]] != 0 {
				i++
			}
			start = i
		}
	}

	if start < len(line) {
		fields = append(fields, line[start:i])
	}

	return fields, ""
}
