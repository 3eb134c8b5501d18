package metrics

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// ConnectionOpened is a no-op.
func (n *NoopCollector) ConnectionOpened() {}

// ConnectionClosed is a no-op.
func (n *NoopCollector) ConnectionClosed() {}

// TLSConnectionEstablished is a no-op.
func (n *NoopCollector) TLSConnectionEstablished() {}

// AuthAttempt is a no-op.
func (n *NoopCollector) AuthAttempt(mechanism string, success bool) {}

// CommandSent is a no-op.
func (n *NoopCollector) CommandSent(command string) {}

// ResponseError is a no-op.
func (n *NoopCollector) ResponseError(kind string) {}

// BytesRead is a no-op.
func (n *NoopCollector) BytesRead(count int) {}
