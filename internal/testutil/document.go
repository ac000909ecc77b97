package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// DocumentBuilder writes simulator result documents for tests.
//
// Example:
//
//	data := testutil.NewDocument("/opt/bin/emssim_lte_turbo.exe").
//		Date("2009-04-01 10:00:00").
//		Initial("TCDec", testutil.Forwarded("num_iter")).
//		Config(testutil.Globals("eb_n0", "0.5", "info_bits", "40")).
//		Result(testutil.Port("Statistics_Error_Rates", "error_rate_blocks",
//			testutil.At(0, 0.5), testutil.At(1, 0.25))).
//		Bytes()
type DocumentBuilder struct {
	executable *string
	date       *string
	comment    *string
	initial    []initialModule
	configs    [][]ConfigPart
	results    [][]ResultPort
}

type initialModule struct {
	instance string
	params   []InitialParam
}

// InitialParam is a parameter declaration in initial_configuration.
type InitialParam struct {
	Name      string
	Forwarded bool
}

// Local declares a parameter set on the module itself.
func Local(name string) InitialParam { return InitialParam{Name: name} }

// Forwarded declares a parameter whose value comes from a global variable.
func Forwarded(name string) InitialParam { return InitialParam{Name: name, Forwarded: true} }

// ConfigPart is the global section or one module section of a
// configuration block.
type ConfigPart struct {
	module string // empty for the global section
	pairs  []string
}

// Globals returns a global section from name/value pairs.
func Globals(pairs ...string) ConfigPart {
	return ConfigPart{pairs: pairs}
}

// Module returns a module section from name/value pairs.
func Module(instance string, pairs ...string) ConfigPart {
	return ConfigPart{module: instance, pairs: pairs}
}

// ResultPort is one status_out port of a result block.
type ResultPort struct {
	module  string
	port    string
	samples []Sample
}

// Sample is one reported value, optionally with an iteration attribute.
type Sample struct {
	Value  float64
	Addr   int
	HasDim bool
}

// At returns a value reported for iteration addr.
func At(addr int, v float64) Sample { return Sample{Value: v, Addr: addr, HasDim: true} }

// Plain returns a value reported without inner dimension.
func Plain(v float64) Sample { return Sample{Value: v} }

// Port returns a status_out port of module.
func Port(module, port string, samples ...Sample) ResultPort {
	return ResultPort{module: module, port: port, samples: samples}
}

// NewDocument starts a document for the given executable path.
func NewDocument(executable string) *DocumentBuilder {
	return &DocumentBuilder{executable: &executable}
}

// WithoutExecutable drops the executable_name element.
func (b *DocumentBuilder) WithoutExecutable() *DocumentBuilder {
	b.executable = nil
	return b
}

// Date sets simulation_date.
func (b *DocumentBuilder) Date(date string) *DocumentBuilder {
	b.date = &date
	return b
}

// Comment sets free_comment.
func (b *DocumentBuilder) Comment(comment string) *DocumentBuilder {
	b.comment = &comment
	return b
}

// Initial declares a module in initial_configuration.
func (b *DocumentBuilder) Initial(instance string, params ...InitialParam) *DocumentBuilder {
	b.initial = append(b.initial, initialModule{instance: instance, params: params})
	return b
}

// Config appends a configuration block.
func (b *DocumentBuilder) Config(parts ...ConfigPart) *DocumentBuilder {
	b.configs = append(b.configs, parts)
	return b
}

// Result appends a result block. Ports of the same module are grouped
// under one module element.
func (b *DocumentBuilder) Result(ports ...ResultPort) *DocumentBuilder {
	b.results = append(b.results, ports)
	return b
}

// Bytes renders the document.
func (b *DocumentBuilder) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<simulation>\n")

	if b.executable != nil {
		element(&buf, 1, "executable_name", *b.executable)
	}
	if b.date != nil {
		element(&buf, 1, "simulation_date", *b.date)
	}
	if b.comment != nil {
		element(&buf, 1, "free_comment", *b.comment)
	}

	buf.WriteString("  <initial_configuration>\n")
	for _, m := range b.initial {
		buf.WriteString("    <module>\n")
		element(&buf, 3, "instance_name", m.instance)
		for _, p := range m.params {
			if p.Forwarded {
				fmt.Fprintf(&buf, "      <%s><global_variable>%s</global_variable></%s>\n", p.Name, p.Name, p.Name)
			} else {
				element(&buf, 3, p.Name, "0")
			}
		}
		buf.WriteString("    </module>\n")
	}
	buf.WriteString("  </initial_configuration>\n")

	for _, parts := range b.configs {
		buf.WriteString("  <configuration>\n")
		for _, part := range parts {
			if part.module == "" {
				buf.WriteString("    <global>\n")
				for i := 0; i+1 < len(part.pairs); i += 2 {
					fmt.Fprintf(&buf, "      <variable name=%q>%s</variable>\n", part.pairs[i], escape(part.pairs[i+1]))
				}
				buf.WriteString("    </global>\n")
				continue
			}
			buf.WriteString("    <module>\n")
			element(&buf, 3, "instance_name", part.module)
			for i := 0; i+1 < len(part.pairs); i += 2 {
				element(&buf, 3, part.pairs[i], part.pairs[i+1])
			}
			buf.WriteString("    </module>\n")
		}
		buf.WriteString("  </configuration>\n")
	}

	for _, ports := range b.results {
		buf.WriteString("  <result>\n")
		for _, group := range groupByModule(ports) {
			fmt.Fprintf(&buf, "    <module name=%q>\n", group[0].module)
			for _, p := range group {
				fmt.Fprintf(&buf, "      <status_out name=%q>\n", p.port)
				for _, s := range p.samples {
					v := strconv.FormatFloat(s.Value, 'g', -1, 64)
					if s.HasDim {
						fmt.Fprintf(&buf, "        <value iteration=\"%d\">%s</value>\n", s.Addr, v)
					} else {
						fmt.Fprintf(&buf, "        <value>%s</value>\n", v)
					}
				}
				buf.WriteString("      </status_out>\n")
			}
			buf.WriteString("    </module>\n")
		}
		buf.WriteString("  </result>\n")
	}

	buf.WriteString("</simulation>\n")
	return buf.Bytes()
}

func groupByModule(ports []ResultPort) [][]ResultPort {
	var out [][]ResultPort
	index := make(map[string]int)
	for _, p := range ports {
		i, ok := index[p.module]
		if !ok {
			i = len(out)
			index[p.module] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], p)
	}
	return out
}

func element(buf *bytes.Buffer, depth int, name, text string) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
	fmt.Fprintf(buf, "<%s>%s</%s>\n", name, escape(text), name)
}

func escape(text string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}
