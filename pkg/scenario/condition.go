package scenario

// CompareOp is a comparison operator used by Compare conditions.
type CompareOp string

const (
	OpEq CompareOp = "eq"
	OpNe CompareOp = "ne"
	OpLt CompareOp = "lt"
	OpLe CompareOp = "le"
	OpGt CompareOp = "gt"
	OpGe CompareOp = "ge"
)

// Condition is a boolean expression evaluated against the flag and
// variable stores. The concrete types below form a closed set; the
// evaluator switches exhaustively over them.
type Condition interface{ isCondition() }

// FlagIs is satisfied when the named flag equals Value.
// An unset flag reads as false.
type FlagIs struct {
	Flag  string
	Value bool
}

// Compare is satisfied when the named variable compares against Value
// using Op. An undefined variable reads as the type-specific zero of
// Value's kind. Operands of different kinds are an evaluation error.
type Compare struct {
	Variable string
	Op       CompareOp
	Value    Value
}

// All is satisfied when every child is satisfied. Evaluation
// short-circuits on the first unsatisfied child. An empty All is true.
type All struct {
	Conds []Condition
}

// Any is satisfied when at least one child is satisfied. Evaluation
// short-circuits on the first satisfied child. An empty Any is false.
type Any struct {
	Conds []Condition
}

// Not negates its child.
type Not struct {
	Cond Condition
}

// Literal is a constant condition.
type Literal struct {
	Value bool
}

func (FlagIs) isCondition() {}
func (Compare) isCondition() {}
func (All) isCondition() {}
func (Any) isCondition() {}
func (Not) isCondition() {}
func (Literal) isCondition() {}
