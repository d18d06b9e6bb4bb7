package hints

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/cairn/vm"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("cairn.hints")

// ---------------------------------------------------------------------------
// Processor: code-string dispatch over the hint catalogue
// ---------------------------------------------------------------------------

// ErrUnknownHint reports a hint code string with no registered handler.
var ErrUnknownHint = errors.New("unknown hint")

// Machine is the slice of interpreter state a hint may touch: memory, the
// register window, and the range-check bound.
type Machine struct {
	Memory     *vm.Memory
	Ctx        *vm.RunContext
	RangeCheck *vm.RangeCheck
}

// HintData is everything recorded for one hint site: the selecting code
// string and the resolver over its symbolic variables.
type HintData struct {
	Code string
	Ids  *IdsManager
}

// NewHintData bundles a code string with its variable references and the
// ApTracking recorded at the site.
func NewHintData(code string, references map[string]HintReference, tracking ApTracking) *HintData {
	return &HintData{Code: code, Ids: NewIdsManager(references, tracking)}
}

// Handler executes one hint against interpreter state. Handlers either
// complete or fail atomically; there is no local recovery.
type Handler func(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error

// Processor selects handlers by exact code-string match. The table is fixed
// at construction; hints are trusted native code, not an embedded
// interpreter.
type Processor struct {
	handlers map[string]Handler
}

// NewProcessor builds a processor with the full built-in catalogue.
func NewProcessor() *Processor {
	p := &Processor{handlers: make(map[string]Handler)}
	p.registerMemoryHints()
	p.registerMathHints()
	p.registerDictHints()
	p.registerSquashDictHints()
	p.registerUint256Hints()
	p.registerBlake2sHints()
	p.registerKeccakHints()
	return p
}

// Register installs (or replaces) the handler for a code string.
func (p *Processor) Register(code string, handler Handler) {
	p.handlers[code] = handler
}

// Execute runs the hint selected by data.Code. Failures carry the hint name
// so the interpreter can report which site aborted the run.
func (p *Processor) Execute(data *HintData, m *Machine, constants Constants, scopes *ExecutionScopes) error {
	handler, ok := p.handlers[data.Code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHint, data.Code)
	}
	log.Debugf("executing hint %q", hintName(data.Code))
	if err := handler(data, m, constants, scopes); err != nil {
		log.Errorf("hint %q failed: %s", hintName(data.Code), err)
		return fmt.Errorf("hint %q: %w", hintName(data.Code), err)
	}
	return nil
}

// hintName abbreviates a code string to its first line for diagnostics.
func hintName(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			return code[:i] + " ..."
		}
	}
	return code
}
