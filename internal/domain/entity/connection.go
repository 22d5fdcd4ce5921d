package entity

// ConnectionState is the lifecycle state of a stream subscription manager.
type ConnectionState string

const (
	StateUninitialized ConnectionState = "uninitialized"
	StateInitializing  ConnectionState = "initializing"
	StateReady         ConnectionState = "ready"
	StateClosed        ConnectionState = "closed"
)

// DataStatus tells consumers whether a collection is still waiting for data.
// DataEmpty is the "no data yet" terminal condition, it is not an error.
type DataStatus string

const (
	DataLoading DataStatus = "loading"
	DataLoaded  DataStatus = "loaded"
	DataEmpty   DataStatus = "empty"
)
