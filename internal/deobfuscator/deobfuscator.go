package deobfuscator

// Deobfuscator recovers hidden payloads from file content
type Deobfuscator interface {
	Name() string
	CanDeobfuscate(content []byte) bool
	Deobfuscate(content []byte) [][]byte
}

// Manager manages multiple deobfuscators
type Manager struct {
	deobfuscators []Deobfuscator
	maxDepth      int
}

// NewManager creates a new deobfuscator manager
func NewManager(maxDepth int) *Manager {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &Manager{
		deobfuscators: make([]Deobfuscator, 0),
		maxDepth:      maxDepth,
	}
}

// NewDefaultManager returns a manager with the base64 deobfuscators registered
func NewDefaultManager() *Manager {
	m := NewManager(3)
	m.Register(NewBase64PayloadDeobfuscator(MinPayloadSize))
	m.Register(NewBase64LiteralDeobfuscator())
	return m
}

// Register registers a deobfuscator
func (m *Manager) Register(d Deobfuscator) {
	m.deobfuscators = append(m.deobfuscators, d)
}

// Payloads returns every payload recovered from content. Recovered payloads
// are fed back to the deobfuscators until maxDepth levels are peeled off.
func (m *Manager) Payloads(content []byte) [][]byte {
	var payloads [][]byte
	level := [][]byte{content}

	for depth := 0; depth < m.maxDepth && len(level) > 0; depth++ {
		var next [][]byte
		for _, data := range level {
			for _, d := range m.deobfuscators {
				if !d.CanDeobfuscate(data) {
					continue
				}
				next = append(next, d.Deobfuscate(data)...)
			}
		}
		payloads = append(payloads, next...)
		level = next
	}

	return payloads
}
