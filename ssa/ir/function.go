package ir

// FunctionId identifies a function within a program.
type FunctionId int

type RuntimeType int

const (
	// RuntimeAcir targets circuit generation; all memory operations must end
	// up statically sized.
	RuntimeAcir RuntimeType = iota
	// RuntimeBrillig targets the unconstrained runtime, which tolerates
	// dynamic sizing.
	RuntimeBrillig
)

func (r RuntimeType) String() string {
	if r == RuntimeAcir {
		return "acir"
	}
	return "brillig"
}

// DataBus describes the function's external I/O: values read from the bus
// on entry and the value written back on return.
type DataBus struct {
	CallData   []ValueId
	ReturnData ValueId
}

func NewDataBus() DataBus {
	return DataBus{ReturnData: InvalidValueId}
}

// MapValues rebuilds the descriptor with every value passed through f.
func (db DataBus) MapValues(f func(ValueId) ValueId) DataBus {
	r := DataBus{ReturnData: db.ReturnData}
	if db.ReturnData != InvalidValueId {
		r.ReturnData = f(db.ReturnData)
	}
	r.CallData = make([]ValueId, len(db.CallData))
	for i, v := range db.CallData {
		r.CallData[i] = f(v)
	}
	return r
}

// Function is an ordered set of blocks with a designated entry.
type Function struct {
	Name    string
	Id      FunctionId
	Runtime RuntimeType
	Entry   BasicBlockId
	Dfg     *DataFlowGraph
	DataBus DataBus
}
