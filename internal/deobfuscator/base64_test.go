package deobfuscator

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestBase64PayloadDeobfuscator(t *testing.T) {
	d := NewBase64PayloadDeobfuscator(MinPayloadSize)
	script := "<?php " + strings.Repeat("echo 'padding'; ", 10) + "eval($_POST['c']); ?>"
	encoded := base64.StdEncoding.EncodeToString([]byte(script))

	// Wrapped at 76 columns like base64(1) output
	var wrapped strings.Builder
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		wrapped.WriteString(encoded[i:end])
		wrapped.WriteString("\n")
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"Single line", encoded, script},
		{"Wrapped lines", wrapped.String(), script},
		{"Plain text", strings.Repeat("hello world, not base64! ", 10), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte(tt.content)
			if !d.CanDeobfuscate(content) {
				t.Fatalf("CanDeobfuscate() = false for %d bytes", len(content))
			}
			payloads := d.Deobfuscate(content)
			if tt.want == "" {
				if len(payloads) != 0 {
					t.Errorf("Deobfuscate() = %d payloads, want 0", len(payloads))
				}
				return
			}
			if len(payloads) != 1 || string(payloads[0]) != tt.want {
				t.Errorf("Deobfuscate() = %q, want %q", payloads, tt.want)
			}
		})
	}
}

func TestBase64PayloadDeobfuscator_SizeThreshold(t *testing.T) {
	d := NewBase64PayloadDeobfuscator(MinPayloadSize)
	short := base64.StdEncoding.EncodeToString([]byte("<?php eval(1);"))

	if d.CanDeobfuscate([]byte(short)) {
		t.Errorf("CanDeobfuscate() = true for %d bytes, want false", len(short))
	}
}

func TestBase64LiteralDeobfuscator(t *testing.T) {
	d := NewBase64LiteralDeobfuscator()

	tests := []struct {
		name     string
		content  string
		can      bool
		expected []string
	}{
		{
			name:     "Double quotes",
			content:  `<?php echo base64_decode("ZWNobyAnSGVsbG8nOw=="); ?>`,
			can:      true,
			expected: []string{"echo 'Hello';"},
		},
		{
			name:     "Single quotes, two literals",
			content:  `<?php base64_decode('ZWNobyAnSGVsbG8nOw=='); base64_decode('c3lzdGVtKCRfR0VUWydjJ10pOw==');`,
			can:      true,
			expected: []string{"echo 'Hello';", "system($_GET['c']);"},
		},
		{
			name:    "Short literal",
			content: `<?php base64_decode("short"); ?>`,
			can:     false,
		},
		{
			name:    "Variable argument",
			content: `<?php base64_decode($var); ?>`,
			can:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte(tt.content)
			if got := d.CanDeobfuscate(content); got != tt.can {
				t.Fatalf("CanDeobfuscate() = %v, want %v", got, tt.can)
			}
			if !tt.can {
				return
			}
			payloads := d.Deobfuscate(content)
			if len(payloads) != len(tt.expected) {
				t.Fatalf("Deobfuscate() = %d payloads, want %d", len(payloads), len(tt.expected))
			}
			for i, want := range tt.expected {
				if string(payloads[i]) != want {
					t.Errorf("payload[%d] = %q, want %q", i, payloads[i], want)
				}
			}
		})
	}
}

func TestManager_Payloads_Nested(t *testing.T) {
	inner := "<?php " + strings.Repeat("/* filler */ ", 10) + "system($_GET['c']);"
	middle := `<?php eval(base64_decode('` + base64.StdEncoding.EncodeToString([]byte(inner)) + `'));`
	outer := base64.StdEncoding.EncodeToString([]byte(middle))

	payloads := NewDefaultManager().Payloads([]byte(outer))

	found := false
	for _, p := range payloads {
		if string(p) == inner {
			found = true
		}
	}
	if !found {
		t.Errorf("Payloads() did not recover the nested payload, got %d payloads", len(payloads))
	}
}

func TestManager_Payloads_Clean(t *testing.T) {
	if got := NewDefaultManager().Payloads([]byte("<?php echo 'hi'; ?>")); len(got) != 0 {
		t.Errorf("Payloads() = %d payloads, want 0", len(got))
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(0)
	if m.maxDepth != 1 {
		t.Errorf("maxDepth = %d, want 1", m.maxDepth)
	}
	if len(m.deobfuscators) != 0 {
		t.Errorf("deobfuscators count = %d, want 0", len(m.deobfuscators))
	}
}
