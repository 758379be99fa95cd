package detectors

import (
	"context"
	"encoding/base64"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type testFile struct {
	rel     string
	content string
	mode    fs.FileMode
}

// setup writes the file under /site and returns an engine plus the file info
func setup(t *testing.T, opts Options, f testFile) (*Engine, *models.FileInfo) {
	t.Helper()

	mem := afero.NewMemMapFs()
	path := filepath.Join("/site", f.rel)
	if f.mode == 0 {
		f.mode = 0644
	}
	if err := afero.WriteFile(mem, path, []byte(f.content), f.mode); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := mem.Chmod(path, f.mode); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}

	rules, err := signatures.NewLoader(mem, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	info := &models.FileInfo{
		Path:         path,
		RelativePath: f.rel,
		Size:         int64(len(f.content)),
		Mode:         f.mode,
	}
	return NewEngine(mem, rules, opts, zap.NewNop()), info
}

func ruleIDs(f *models.Finding) []string {
	if f == nil {
		return nil
	}
	var ids []string
	for _, issue := range f.Issues {
		ids = append(ids, issue.RuleID)
	}
	return ids
}

func hasRule(f *models.Finding, id string) bool {
	for _, got := range ruleIDs(f) {
		if got == id {
			return true
		}
	}
	return false
}

func TestEngine_ShellScriptHasIndependentFindings(t *testing.T) {
	engine, info := setup(t, Options{}, testFile{
		rel:     "uploads/shell.php",
		content: "<?php eval($_GET['x']); ?>",
	})

	res := engine.Inspect(context.Background(), info)
	if res.Err != nil {
		t.Fatalf("Inspect() error = %v", res.Err)
	}
	if res.Finding == nil {
		t.Fatal("Inspect() returned no finding")
	}

	checks := make(map[models.CheckKind]bool)
	for _, issue := range res.Finding.Issues {
		checks[issue.Check] = true
	}
	if !checks[models.CheckFilename] {
		t.Error("missing filename issue")
	}
	if !hasRule(res.Finding, "CE-EVAL") {
		t.Errorf("missing eval( content issue, got %v", ruleIDs(res.Finding))
	}
	if len(res.Finding.Issues) < 2 {
		t.Errorf("issues = %d, want at least 2", len(res.Finding.Issues))
	}

	found := false
	for _, msg := range res.Finding.Messages() {
		if strings.Contains(msg, "code-execution pattern: eval(") {
			found = true
		}
	}
	if !found {
		t.Errorf("Messages() = %v, want a code-execution eval( message", res.Finding.Messages())
	}
}

func TestEngine_IssueOrderFollowsChecks(t *testing.T) {
	engine, info := setup(t, Options{}, testFile{
		rel:     "uploads/shell.php",
		content: "<?php system($_GET['x']); ?>",
		mode:    0777,
	})

	res := engine.Inspect(context.Background(), info)
	order := map[models.CheckKind]int{
		models.CheckFilename: 0, models.CheckMIME: 1,
		models.CheckContent: 2, models.CheckPermission: 3,
	}
	last := -1
	for _, issue := range res.Finding.Issues {
		if order[issue.Check] < last {
			t.Fatalf("issues out of order: %v", ruleIDs(res.Finding))
		}
		last = order[issue.Check]
	}
	if last != 3 {
		t.Errorf("expected permission issues last, got %v", ruleIDs(res.Finding))
	}
}

func TestEngine_WorldWritableRegardlessOfContent(t *testing.T) {
	engine, info := setup(t, Options{}, testFile{
		rel:     "notes.txt",
		content: "nothing to see",
		mode:    0646,
	})

	res := engine.Inspect(context.Background(), info)
	if !hasRule(res.Finding, "PERM-WORLD-WRITABLE") {
		t.Errorf("Inspect() = %v, want PERM-WORLD-WRITABLE", ruleIDs(res.Finding))
	}
	if len(res.Finding.Issues) != 1 {
		t.Errorf("issues = %v, want only the permission issue", ruleIDs(res.Finding))
	}
}

func TestEngine_ExecutableBits(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"uploads/photo.txt", true},
		{"bin/deploy.sh", false},
		{"bin/tool.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			engine, info := setup(t, Options{}, testFile{rel: tt.rel, content: "plain", mode: 0755})
			res := engine.Inspect(context.Background(), info)
			if got := hasRule(res.Finding, "PERM-EXECUTABLE"); got != tt.want {
				t.Errorf("PERM-EXECUTABLE = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_ScriptMIMEInContentDir(t *testing.T) {
	opts := Options{ContentDirs: []string{"uploads"}}

	engine, info := setup(t, opts, testFile{rel: "uploads/2024/index.php", content: "<?php echo 1;"})
	if res := engine.Inspect(context.Background(), info); !hasRule(res.Finding, "MIME-SCRIPT") {
		t.Errorf("uploads php: %v, want MIME-SCRIPT", ruleIDs(res.Finding))
	}

	engine, info = setup(t, opts, testFile{rel: "themes/index.php", content: "<?php echo 1;"})
	if res := engine.Inspect(context.Background(), info); res.Finding != nil {
		t.Errorf("theme php: %v, want clean", ruleIDs(res.Finding))
	}
}

func TestEngine_ImageMismatch(t *testing.T) {
	engine, info := setup(t, Options{}, testFile{rel: "uploads/cat.jpg", content: "<?php system($_GET['c']); ?>"})

	res := engine.Inspect(context.Background(), info)
	for _, id := range []string{"MIME-MISMATCH", "IN-PHP-TAG", "CE-SYSTEM"} {
		if !hasRule(res.Finding, id) {
			t.Errorf("Inspect() = %v, missing %s", ruleIDs(res.Finding), id)
		}
	}
	if res.Finding.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", res.Finding.MIMEType)
	}
}

func TestEngine_ELFBehindImageExtension(t *testing.T) {
	elf := "\x7fELF\x02\x01\x01\x00" + strings.Repeat("\x00", 64)
	engine, info := setup(t, Options{}, testFile{rel: "uploads/logo.png", content: elf})

	res := engine.Inspect(context.Background(), info)
	if !hasRule(res.Finding, "MIME-EXECUTABLE") {
		t.Errorf("Inspect() = %v, want MIME-EXECUTABLE", ruleIDs(res.Finding))
	}
	if res.Content != ContentBinary {
		t.Errorf("Content = %v, want ContentBinary", res.Content)
	}
}

func TestEngine_Base64Payload(t *testing.T) {
	script := "<?php " + strings.Repeat("$pad = 1; ", 10) + "eval($_POST['cmd']); ?>"
	engine, info := setup(t, Options{}, testFile{
		rel:     "uploads/data.txt",
		content: base64.StdEncoding.EncodeToString([]byte(script)),
	})

	res := engine.Inspect(context.Background(), info)
	if !hasRule(res.Finding, "B64-PHP-TAG") || !hasRule(res.Finding, "B64-EVAL") {
		t.Errorf("Inspect() = %v, want B64-PHP-TAG and B64-EVAL", ruleIDs(res.Finding))
	}
}

func TestEngine_ContentSkips(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		engine, info := setup(t, Options{MaxContentSize: 10}, testFile{rel: "a.txt", content: "<?php eval($x); ?>"})
		res := engine.Inspect(context.Background(), info)
		if res.Content != ContentTooLarge {
			t.Errorf("Content = %v, want ContentTooLarge", res.Content)
		}
		if res.Finding != nil {
			t.Errorf("Inspect() = %v, want clean", ruleIDs(res.Finding))
		}
	})

	t.Run("binary", func(t *testing.T) {
		engine, info := setup(t, Options{}, testFile{rel: "blob.dat", content: "\x00\x01eval($x)"})
		res := engine.Inspect(context.Background(), info)
		if res.Content != ContentBinary {
			t.Errorf("Content = %v, want ContentBinary", res.Content)
		}
		if hasRule(res.Finding, "CE-EVAL") {
			t.Error("binary file content was scanned")
		}
	})

	t.Run("binary php still scanned", func(t *testing.T) {
		engine, info := setup(t, Options{}, testFile{rel: "blob.php", content: "\x00\x01<?php eval($x);"})
		res := engine.Inspect(context.Background(), info)
		if res.Content != ContentScanned {
			t.Errorf("Content = %v, want ContentScanned", res.Content)
		}
		if !hasRule(res.Finding, "CE-EVAL") {
			t.Errorf("Inspect() = %v, want CE-EVAL", ruleIDs(res.Finding))
		}
	})
}

func TestEngine_CleanFile(t *testing.T) {
	engine, info := setup(t, Options{}, testFile{rel: "uploads/readme.txt", content: "Thanks for visiting."})

	res := engine.Inspect(context.Background(), info)
	if res.Finding != nil {
		t.Errorf("Inspect() = %v, want clean", ruleIDs(res.Finding))
	}
	if res.Content != ContentScanned {
		t.Errorf("Content = %v, want ContentScanned", res.Content)
	}
}

func TestEngine_UnreadableFileStillChecked(t *testing.T) {
	engine, _ := setup(t, Options{}, testFile{rel: "other.txt", content: "x"})
	info := &models.FileInfo{Path: "/site/uploads/shell.php", RelativePath: "uploads/shell.php", Size: 10, Mode: 0644}

	res := engine.Inspect(context.Background(), info)
	if res.Err == nil {
		t.Error("Inspect() expected read error")
	}
	if res.Content != ContentUnreadable {
		t.Errorf("Content = %v, want ContentUnreadable", res.Content)
	}
	if !hasRule(res.Finding, "FN-KNOWN-SHELL") {
		t.Errorf("Inspect() = %v, want filename issues despite read error", ruleIDs(res.Finding))
	}
}

func TestEngine_ChecksOption(t *testing.T) {
	engine, info := setup(t, Options{Checks: []string{"permission"}}, testFile{
		rel:     "uploads/shell.php",
		content: "<?php eval($_GET['x']); ?>",
		mode:    0666,
	})

	res := engine.Inspect(context.Background(), info)
	ids := ruleIDs(res.Finding)
	if len(ids) != 1 || ids[0] != "PERM-WORLD-WRITABLE" {
		t.Errorf("Inspect() = %v, want only PERM-WORLD-WRITABLE", ids)
	}
}

func TestEngine_DetectorOrder(t *testing.T) {
	engine, _ := setup(t, Options{}, testFile{rel: "a.txt", content: "a"})

	var names []string
	for _, d := range engine.Detectors() {
		names = append(names, d.Name())
	}
	if strings.Join(names, ",") != "filename,mime,content,permission" {
		t.Errorf("Detectors() = %v", names)
	}
}

// openCounter counts Open calls so tests can tell whether a body was read
type openCounter struct {
	afero.Fs
	opens int
}

func (c *openCounter) Open(name string) (afero.File, error) {
	c.opens++
	return c.Fs.Open(name)
}

func TestEngine_ContentCheckDisabledSkipsRead(t *testing.T) {
	tests := []struct {
		name      string
		checks    []string
		wantOpens int
		want      ContentStatus
	}{
		{"AllChecks", nil, 2, ContentScanned},
		{"FilenameOnly", []string{"filename"}, 1, ContentDisabled},
		{"MIMEAndPermission", []string{"mime", "permission"}, 1, ContentDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := afero.NewMemMapFs()
			content := "<?php eval($_GET['x']); ?>"
			if err := afero.WriteFile(mem, "/site/uploads/shell.php", []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			rules, err := signatures.NewLoader(mem, "").Load()
			if err != nil {
				t.Fatal(err)
			}

			counter := &openCounter{Fs: mem}
			engine := NewEngine(counter, rules, Options{Checks: tt.checks}, zap.NewNop())
			info := &models.FileInfo{
				Path:         "/site/uploads/shell.php",
				RelativePath: "uploads/shell.php",
				Size:         int64(len(content)),
				Mode:         0644,
			}

			res := engine.Inspect(context.Background(), info)
			if res.Content != tt.want {
				t.Errorf("Content = %v, want %v", res.Content, tt.want)
			}
			if counter.opens != tt.wantOpens {
				t.Errorf("opens = %d, want %d", counter.opens, tt.wantOpens)
			}
			if tt.checks != nil && hasRule(res.Finding, "CE-EVAL") {
				t.Error("content issue reported with the content check disabled")
			}
		})
	}
}
