package neat

// ConnectionKey identifies a connection by its endpoint node ids.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// InnovationLedger hands out structural identifiers shared by every genome of a run.
// Two genomes that independently split the same connection, or connect the same
// pair of nodes, receive the same node id or innovation number.
//
// The ledger is not safe for concurrent use. Mutation, crossover and speciation
// run sequentially.
type InnovationLedger struct {
	splitNodes  map[ConnectionKey]int
	connections map[ConnectionKey]int

	nextNodeID     int
	nextInnovation int
	nextOrganismID int
}

// NewInnovationLedger creates a ledger whose first minted node id follows the
// input and output nodes of the initial skeleton.
func NewInnovationLedger(numInputs, numOutputs int) *InnovationLedger {
	return &InnovationLedger{
		splitNodes:  make(map[ConnectionKey]int),
		connections: make(map[ConnectionKey]int),
		nextNodeID:  numInputs + numOutputs,
	}
}

// NextOrganismID returns a new, globally unique organism id.
func (l *InnovationLedger) NextOrganismID() int {
	id := l.nextOrganismID
	l.nextOrganismID++
	return id
}

// AssignNodeID returns the node id for splitting the connection identified by key.
func (l *InnovationLedger) AssignNodeID(key ConnectionKey) int {
	if id, ok := l.splitNodes[key]; ok {
		return id
	}
	id := l.nextNodeID
	l.nextNodeID++
	l.splitNodes[key] = id
	return id
}

// AssignConnectionID returns the innovation number for a connection between the key's endpoints.
func (l *InnovationLedger) AssignConnectionID(key ConnectionKey) int {
	if id, ok := l.connections[key]; ok {
		return id
	}
	id := l.nextInnovation
	l.nextInnovation++
	l.connections[key] = id
	return id
}

// Reserve advances the counters past the given node id and innovation number,
// for genomes created outside the ledger such as imported ones.
func (l *InnovationLedger) Reserve(nodeID, innovation int) {
	l.nextNodeID = max(l.nextNodeID, nodeID+1)
	l.nextInnovation = max(l.nextInnovation, innovation+1)
}

// Reset forgets every recorded split and connection. Counters keep running so
// identifiers minted afterwards never collide with earlier ones.
func (l *InnovationLedger) Reset() {
	l.splitNodes = make(map[ConnectionKey]int)
	l.connections = make(map[ConnectionKey]int)
}

// ledgerState is the serializable form of an InnovationLedger.
type ledgerState struct {
	SplitNodes     map[ConnectionKey]int
	Connections    map[ConnectionKey]int
	NextNodeID     int
	NextInnovation int
	NextOrganismID int
}

func (l *InnovationLedger) state() ledgerState {
	return ledgerState{
		SplitNodes:     l.splitNodes,
		Connections:    l.connections,
		NextNodeID:     l.nextNodeID,
		NextInnovation: l.nextInnovation,
		NextOrganismID: l.nextOrganismID,
	}
}

func ledgerFromState(s ledgerState) *InnovationLedger {
	l := &InnovationLedger{
		splitNodes:     s.SplitNodes,
		connections:    s.Connections,
		nextNodeID:     s.NextNodeID,
		nextInnovation: s.NextInnovation,
		nextOrganismID: s.NextOrganismID,
	}
	if l.splitNodes == nil {
		l.splitNodes = make(map[ConnectionKey]int)
	}
	if l.connections == nil {
		l.connections = make(map[ConnectionKey]int)
	}
	return l
}
