package schedule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"poolsim/internal/fault"
	"poolsim/internal/fuel"
)

// Token positions in an instruction line.
const (
	tokOp          = 0
	tokCode        = 2
	tokAssembly    = 3
	tokFromBridge  = 4
	tokFromCart    = 5
	tokDestBridge  = 6
	tokDestCart    = 7
	minLineTokens  = 8
	codeWithRod    = "606"
	codeWithoutRod = "600"
)

// ParseInstructions reads an instruction list. Blank lines are skipped. Lines whose assembly id contains
// marker (when marker is non-empty) are simulator entries and are dropped. source names the input in errors.
func ParseInstructions(r io.Reader, source, marker string) ([]Instruction, error) {
	var out []Instruction
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		tok := strings.Fields(sc.Text())
		if len(tok) == 0 {
			continue
		}
		where := fmt.Sprintf("%s:%d", source, line)
		if len(tok) < minLineTokens {
			return nil, fault.New(fault.KindFormat, where, "%d tokens, want at least %d", len(tok), minLineTokens)
		}
		bridge, err := strconv.Atoi(tok[tokDestBridge])
		if err != nil {
			return nil, fault.Wrap(fault.KindFormat, where, fmt.Errorf("bridge: %w", err))
		}
		cart, err := strconv.Atoi(tok[tokDestCart])
		if err != nil {
			return nil, fault.Wrap(fault.KindFormat, where, fmt.Errorf("cart: %w", err))
		}
		id := tok[tokAssembly]
		if marker != "" && strings.Contains(id, marker) {
			continue
		}

		ins := Instruction{
			Code:        tok[tokCode],
			AssemblyID:  id,
			Destination: fuel.Coordinate{Bridge: bridge, Cart: cart},
			Source:      source,
			Line:        line,
		}
		// Op and origin are informational; a file that leaves them blank or non-numeric still loads.
		ins.Op, _ = strconv.Atoi(tok[tokOp])
		ins.From.Bridge, _ = strconv.Atoi(tok[tokFromBridge])
		ins.From.Cart, _ = strconv.Atoi(tok[tokFromCart])
		out = append(out, ins)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return out, nil
}

// ReadInstructionFile is ParseInstructions over a file.
func ReadInstructionFile(path, marker string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instructions: %w", err)
	}
	defer f.Close()
	return ParseInstructions(f, path, marker)
}

// ParseOverride reads an override key set: the first token of each line, with '#' starting a comment.
func ParseOverride(r io.Reader) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if tok := strings.Fields(text); len(tok) > 0 {
			keys[tok[0]] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read override: %w", err)
	}
	return keys, nil
}

// MergeBackup appends backup instructions after primary, skipping ids already in primary or in override.
func MergeBackup(primary, backup []Instruction, override map[string]struct{}) []Instruction {
	seen := make(map[string]struct{}, len(primary))
	for _, ins := range primary {
		seen[ins.AssemblyID] = struct{}{}
	}
	out := append([]Instruction(nil), primary...)
	for _, ins := range backup {
		if _, ok := seen[ins.AssemblyID]; ok {
			continue
		}
		if _, ok := override[ins.AssemblyID]; ok {
			continue
		}
		seen[ins.AssemblyID] = struct{}{}
		out = append(out, ins)
	}
	return out
}

// Files names a stage's instruction inputs. Backup and Override are optional.
type Files struct {
	Instructions string
	Backup       string
	Override     string
}

// LoadStage reads a stage's primary list and merges in its backup list.
func LoadStage(files Files, marker string) ([]Instruction, error) {
	primary, err := ReadInstructionFile(files.Instructions, marker)
	if err != nil {
		return nil, err
	}
	if files.Backup == "" {
		return primary, nil
	}
	backup, err := ReadInstructionFile(files.Backup, marker)
	if err != nil {
		return nil, err
	}
	var override map[string]struct{}
	if files.Override != "" {
		f, err := os.Open(files.Override)
		if err != nil {
			return nil, fmt.Errorf("failed to open override: %w", err)
		}
		defer f.Close()
		if override, err = ParseOverride(f); err != nil {
			return nil, err
		}
	}
	return MergeBackup(primary, backup, override), nil
}

// WriteInstructions writes instructions in the line format ParseInstructions reads, numbering operations
// from firstOp. It returns the next free operation number.
func WriteInstructions(w io.Writer, instructions []Instruction, firstOp int) (int, error) {
	bw := bufio.NewWriter(w)
	op := firstOp
	for _, ins := range instructions {
		code := ins.Code
		if code == "" {
			code = codeWithoutRod
		}
		_, err := fmt.Fprintf(bw, "%d\t12\t%s\t%s\t%d\t%d\t%d\t\t%d\t\tN\t00:00\t00:00\t00:00\t00:00\t0\t0\t0\t0\t0\n",
			op, code, ins.AssemblyID, ins.From.Bridge, ins.From.Cart, ins.Destination.Bridge, ins.Destination.Cart)
		if err != nil {
			return op, fmt.Errorf("failed to write instruction: %w", err)
		}
		op++
	}
	if err := bw.Flush(); err != nil {
		return op, fmt.Errorf("failed to write instruction: %w", err)
	}
	return op, nil
}

// CodeFor returns the operation code for an assembly: 606 when it carries a control program, else 600.
func CodeFor(a *fuel.Assembly) string {
	if a.ControlProgram != "" {
		return codeWithRod
	}
	return codeWithoutRod
}
