package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

// WriteTxOwnedByCaller means the caller's unit of work supplies the
// transaction and commits it. Without one, each write runs in its own.
const WriteTxOwnedByCaller WriteTxOwnership = "caller_owned"

// ReadPolicy defines how aggregate contracts should expose reads.
type ReadPolicy string

// ReadPolicyFullAggregate loads the whole aggregate graph on every read.
const ReadPolicyFullAggregate ReadPolicy = "full_aggregate_reads"

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Cached           bool
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
// Implementations should return a stable contract description.
type Aggregate interface {
	Contract() Contract
}

