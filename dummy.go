package hmap

// DummyLog is the default no-op Logger.
type DummyLog struct{}

func (*DummyLog) Printf(string, ...interface{}) {}
func (*DummyLog) Print(...interface{})          {}
func (*DummyLog) Println(...interface{})        {}

// DummyMetrics is the default no-op MetricsWriter.
type DummyMetrics struct{}

func (*DummyMetrics) Put()            {}
func (*DummyMetrics) Get()            {}
func (*DummyMetrics) Hit()            {}
func (*DummyMetrics) Miss()           {}
func (*DummyMetrics) Remove()         {}
func (*DummyMetrics) Evict(_ uint32)  {}
func (*DummyMetrics) Expire(_ uint32) {}
func (*DummyMetrics) Collision()      {}
func (*DummyMetrics) NoSpace()        {}
func (*DummyMetrics) Compact()        {}

var dummyMetrics MetricsWriter = &DummyMetrics{}
var dummyLog Logger = &DummyLog{}
