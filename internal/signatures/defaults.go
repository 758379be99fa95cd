package signatures

import "github.com/jessifoo/rayzgyproc/pkg/models"

// Base names that are expected to carry PHP code
const phpNames = `(?i)\.(php\d?|phtml|pht|phar|inc)$`

// Base names handled by the JavaScript table instead of the PHP one
const scriptPages = `(?i)\.(m?js|html?)$`

var jsExtensions = []string{"js", "mjs", "html", "htm"}

// DefaultRules is the built-in rule table
func DefaultRules() []*models.Rule {
	var rules []*models.Rule
	rules = append(rules, filenameRules()...)
	rules = append(rules, contentRules()...)
	rules = append(rules, decodedRules()...)
	return rules
}

// filenameRules match against the base name of a file
func filenameRules() []*models.Rule {
	r := func(id, name, pattern, except string, sev models.Severity) *models.Rule {
		return &models.Rule{
			ID: id, Name: name, Check: models.CheckFilename, Category: "filename",
			Severity: sev, Pattern: pattern, Except: except,
		}
	}
	return []*models.Rule{
		r("FN-DOUBLE-EXT", "double extension",
			`(?i)\.(php\d?|phtml|pht|phar|inc|cgi|pl|py|sh|asp|aspx|jsp)\.[a-z0-9]+$`, "", models.SeverityHigh),
		r("FN-DISGUISED-SCRIPT", "script disguised behind a media extension",
			`(?i)\.(jpe?g|png|gif|bmp|webp|ico|svg|txt|pdf)\.(php\d?|phtml|pht|phar)$`, "", models.SeverityCritical),
		r("FN-HIDDEN", "hidden file",
			`^\.`, `(?i)^\.htaccess$`, models.SeverityLow),
		r("FN-HTACCESS", ".htaccess override",
			`(?i)^\.htaccess$`, "", models.SeverityMedium),
		r("FN-EXEC-EXT", "executable binary extension",
			`(?i)\.(exe|dll|so|bin|com|scr|msi)$`, "", models.SeverityHigh),
		r("FN-HASH-NAME", "hash-like name",
			`(?i)^[0-9a-f]{32}(\.[a-z0-9]+)?$`, "", models.SeverityMedium),
		r("FN-KNOWN-SHELL", "known web shell name",
			`(?i)^(shell|backdoor|c99(shell)?|r57(shell)?|fx29shell|wso\d*|b374k|c100|alfa|webshell)\.(php\d?|phtml)$`, "", models.SeverityCritical),
		r("FN-SUSPICIOUS-TERM", "suspicious term in name",
			`(?i)(eval|exec|system|shell|hack|base64)`, "", models.SeverityMedium),
		r("FN-STRAY-CONFIG", "stray config.php",
			`(?i)(^|[^a-z])config\.php$`, `(?i)^wp-config\.php$`, models.SeverityLow),
	}
}

// contentRules match against the text of scannable files
func contentRules() []*models.Rule {
	php := func(id, name, category, pattern string, sev models.Severity) *models.Rule {
		return &models.Rule{
			ID: id, Name: name, Check: models.CheckContent, Category: category,
			Severity: sev, Pattern: pattern, Except: scriptPages,
		}
	}
	js := func(id, name, pattern string, sev models.Severity) *models.Rule {
		return &models.Rule{
			ID: id, Name: name, Check: models.CheckContent, Category: "javascript",
			Severity: sev, Pattern: pattern, Extensions: jsExtensions,
		}
	}

	return []*models.Rule{
		php("CE-EVAL", "eval(", "code-execution", `\beval\s*\(`, models.SeverityCritical),
		php("CE-ASSERT", "assert(", "code-execution", `\bassert\s*\(`, models.SeverityHigh),
		php("CE-SYSTEM", "system(", "code-execution", `\bsystem\s*\(`, models.SeverityHigh),
		php("CE-EXEC", "exec(", "code-execution", `\bexec\s*\(`, models.SeverityHigh),
		php("CE-SHELL-EXEC", "shell_exec(", "code-execution", `\bshell_exec\s*\(`, models.SeverityCritical),
		php("CE-PASSTHRU", "passthru(", "code-execution", `\bpassthru\s*\(`, models.SeverityCritical),
		php("CE-POPEN", "popen(", "code-execution", `\b(proc_open|popen)\s*\(`, models.SeverityHigh),
		php("CE-CREATE-FUNCTION", "create_function(", "code-execution", `\bcreate_function\s*\(`, models.SeverityHigh),
		php("CE-PREG-E", "preg_replace /e", "code-execution", `preg_replace\s*\(\s*['"][^'"]*/[a-zA-Z]*e[a-zA-Z]*['"]`, models.SeverityCritical),
		php("CE-PHP-INPUT", "php://input", "code-execution", `(?i)\b(include|require)(_once)?\s*\(?\s*['"]php://input|file_get_contents\s*\(\s*['"]php://input`, models.SeverityCritical),
		php("CE-INPUT-CALL", "variable function on request data", "code-execution", `\$[a-zA-Z_]\w*\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)\b`, models.SeverityCritical),
		php("CE-DYNAMIC-VAR", "${} expression", "code-execution", `\$\{[^}]+\}`, models.SeverityLow),

		php("OB-BASE64-DECODE", "base64_decode(", "obfuscation", `\bbase64_decode\s*\(`, models.SeverityMedium),
		php("OB-ROT13", "str_rot13(", "obfuscation", `\bstr_rot13\s*\(`, models.SeverityMedium),
		php("OB-GZINFLATE", "gzinflate(", "obfuscation", `\bgzinflate\s*\(`, models.SeverityHigh),
		php("OB-GZUNCOMPRESS", "gzuncompress(", "obfuscation", `\bgzuncompress\s*\(`, models.SeverityHigh),
		php("OB-GLOBALS", "$GLOBALS lookup table", "obfuscation", `\$GLOBALS\[['"][^'"]+['"]\]\[\d+\]`, models.SeverityHigh),
		php("OB-CHR-CONCAT", "chr() concatenation", "obfuscation", `(?i)chr\(\s*\d+\s*\)\s*\.\s*chr\(\s*\d+\s*\)`, models.SeverityHigh),
		php("OB-VAR-CHAIN", "long variable assignment chain", "obfuscation", `(\$[a-zA-Z0-9_]+\s*=\s*[^;]+;\s*){10,}`, models.SeverityMedium),
		// A lone \xNN is common in ordinary string literals
		php("EN-HEX-ESCAPE", "hex escape sequence", "encoding", `(\\x[0-9a-fA-F]{2}){4,}`, models.SeverityMedium),

		{
			ID: "IN-PHP-TAG", Name: "<?php", Check: models.CheckContent, Category: "injection",
			Severity: models.SeverityHigh, Pattern: `<\?php`, Except: phpNames,
		},
		{
			ID: "IN-GIF-POLYGLOT", Name: "GIF89a header with PHP", Check: models.CheckContent, Category: "injection",
			Severity: models.SeverityCritical, Pattern: `(?s)^GIF89a.*<\?php`,
		},

		js("JS-EVAL", "eval(", `\beval\s*\(`, models.SeverityMedium),
		js("JS-NEW-FUNCTION", "new Function(", `\bnew\s+Function\s*\(`, models.SeverityMedium),
		js("JS-DOCUMENT-WRITE", "document.write(", `document\.write(ln)?\s*\(`, models.SeverityLow),
		js("JS-UNESCAPE", "unescape(", `\bunescape\s*\(`, models.SeverityMedium),
		js("JS-ESCAPE", "escape(", `\bescape\s*\(`, models.SeverityLow),
		js("JS-FROMCHARCODE", "String.fromCharCode", `String\.fromCharCode\s*\(`, models.SeverityMedium),
		js("JS-COOKIE", "document.cookie", `document\.cookie`, models.SeverityLow),
		js("JS-LOCAL-STORAGE", "localStorage", `\blocalStorage\b`, models.SeverityLow),
		js("JS-SESSION-STORAGE", "sessionStorage", `\bsessionStorage\b`, models.SeverityLow),
	}
}

// decodedRules match against payloads recovered from base64
func decodedRules() []*models.Rule {
	r := func(id, name, pattern string) *models.Rule {
		return &models.Rule{
			ID: id, Name: name, Check: models.CheckContent, Category: "base64-encoded",
			Severity: models.SeverityCritical, Pattern: pattern, Decoded: true,
		}
	}
	return []*models.Rule{
		r("B64-PHP-TAG", "<?php", `<\?php`),
		r("B64-EVAL", "eval(", `\beval\s*\(`),
		r("B64-BASE64-DECODE", "base64_decode(", `\bbase64_decode\s*\(`),
		r("B64-SYSTEM", "system(", `\bsystem\s*\(`),
		r("B64-EXEC", "exec(", `\bexec\s*\(`),
		r("B64-SHELL-EXEC", "shell_exec(", `\bshell_exec\s*\(`),
	}
}
