// pre_processor.go implements the WGSL pre-processor. Shader sources share struct
// definitions with the Go side through include directives of the form
//
//	//@noded:include <name>
//
// which are replaced with the registered WGSL source for <name>. Each name is expanded at
// most once per Process call so two includes of the same struct cannot redeclare it.
package shader

import (
	"fmt"
	"strings"
)

const includeDirective = "//@noded:include"

// PreProcessor expands include directives in WGSL source.
type PreProcessor interface {
	// Process replaces every include directive in source with the registered WGSL text.
	// Includes may themselves contain includes.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if a directive is malformed or names an unregistered include
	Process(source string) (string, error)

	// Register adds or replaces the WGSL text for an include name.
	//
	// Parameters:
	//   - name: the include name used after the directive
	//   - source: the WGSL text to inject
	Register(name, source string)
}

type preProcessor struct {
	registry map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the given includes registered.
//
// Parameters:
//   - includes: include name to WGSL source
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(includes map[string]string) PreProcessor {
	p := &preProcessor{registry: make(map[string]string, len(includes))}
	for name, src := range includes {
		p.registry[name] = src
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	p.registry[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	return p.expand(source, make(map[string]bool), 0)
}

func (p *preProcessor) expand(source string, seen map[string]bool, depth int) (string, error) {
	if depth > len(p.registry) {
		return "", fmt.Errorf("include nesting deeper than %d", len(p.registry))
	}
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includeDirective)
		if !ok {
			out = append(out, line)
			continue
		}
		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: %s takes exactly one argument", i+1, includeDirective)
		}
		name := args[0]
		if seen[name] {
			continue
		}
		src, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		seen[name] = true
		expanded, err := p.expand(src, seen, depth+1)
		if err != nil {
			return "", fmt.Errorf("include %q: %w", name, err)
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}
