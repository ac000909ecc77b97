package document

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Document is the typed view of one simulator result file.
type Document struct {
	// Metadata. Empty when the element is missing; the Has* flags tell
	// a missing element from an empty one.
	ExecutableName    string
	SimulationDate    string
	FreeComment       string
	HasExecutableName bool
	HasSimulationDate bool

	Initial        []InitialModule
	Configurations []Configuration
	Results        []ResultBlock
}

// InitialModule is a module declared in initial_configuration.
type InitialModule struct {
	Instance string
	Params   []InitialParam
}

// InitialParam is one parameter declaration of an initial module.
type InitialParam struct {
	Name string
	// Forwarded is true when the value comes from a global variable
	// rather than being set on the module itself.
	Forwarded bool
}

// Configuration is one configuration block.
type Configuration struct {
	Globals []Binding
	Modules []ModuleBlock
}

// ModuleBlock holds the parameters set on one module instance.
type ModuleBlock struct {
	Instance string
	Params   []Binding
}

// Binding is a named textual value.
type Binding struct {
	Name  string
	Value string
}

// ResultBlock is one result section.
type ResultBlock struct {
	Modules []ResultModule
}

// ResultModule holds the status ports reported by one module.
type ResultModule struct {
	Name  string
	Ports []Port
}

// Port is a status_out port with its reported values.
type Port struct {
	Name    string
	Samples []Sample
}

// Sample is one reported value. When HasDim is set, DimName and DimAddr
// come from the first attribute of the value element.
type Sample struct {
	Value   float64
	HasDim  bool
	DimName string
	DimAddr int
}

// instanceNameTag is the always-present child naming a module instance.
const instanceNameTag = "instance_name"

// Parse decodes a result document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := ParseTree(r)
	if err != nil {
		return nil, &FormatError{Code: ErrCodeSyntax, Message: err.Error()}
	}
	return FromTree(root)
}

// ParseBytes decodes a result document held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// FromTree builds the typed view of a parsed tree. Section lookups search
// the whole tree by element name, so wrapper elements are tolerated.
func FromTree(root *Element) (*Document, error) {
	doc := &Document{}

	if el := findIncludingSelf(root, "executable_name"); el != nil {
		doc.ExecutableName = el.Text
		doc.HasExecutableName = true
	}
	if el := findIncludingSelf(root, "simulation_date"); el != nil {
		doc.SimulationDate = el.Text
		doc.HasSimulationDate = true
	}
	if el := findIncludingSelf(root, "free_comment"); el != nil {
		doc.FreeComment = el.Text
	}

	initial := findIncludingSelf(root, "initial_configuration")
	if initial == nil {
		return nil, &FormatError{Code: ErrCodeMissingSection, Message: "initial_configuration not found"}
	}
	modules, err := decodeInitial(initial)
	if err != nil {
		return nil, err
	}
	doc.Initial = modules

	for i, el := range findAllIncludingSelf(root, "configuration") {
		cfg, err := decodeConfiguration(el)
		if err != nil {
			return nil, fmt.Errorf("configuration %d: %w", i, err)
		}
		doc.Configurations = append(doc.Configurations, cfg)
	}

	for i, el := range findAllIncludingSelf(root, "result") {
		res, err := decodeResult(el)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		doc.Results = append(doc.Results, res)
	}

	return doc, nil
}

func decodeInitial(initial *Element) ([]InitialModule, error) {
	var modules []InitialModule
	for _, m := range initial.FindAll("module") {
		instance, err := instanceName(m)
		if err != nil {
			return nil, fmt.Errorf("initial_configuration: %w", err)
		}
		mod := InitialModule{Instance: instance}
		for _, p := range m.Children {
			if p.Name == instanceNameTag {
				continue
			}
			mod.Params = append(mod.Params, InitialParam{
				Name:      p.Name,
				Forwarded: p.Find("global_variable") != nil,
			})
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

func decodeConfiguration(el *Element) (Configuration, error) {
	var cfg Configuration

	for _, g := range el.FindAll("global") {
		for _, v := range g.FindAll("variable") {
			name, _ := v.Attr("name")
			cfg.Globals = append(cfg.Globals, Binding{Name: name, Value: v.Text})
		}
	}

	for _, m := range el.FindAll("module") {
		instance, err := instanceName(m)
		if err != nil {
			return Configuration{}, err
		}
		block := ModuleBlock{Instance: instance}
		for _, p := range m.Children {
			if p.Name == instanceNameTag {
				continue
			}
			block.Params = append(block.Params, Binding{Name: p.Name, Value: p.Text})
		}
		cfg.Modules = append(cfg.Modules, block)
	}

	return cfg, nil
}

func decodeResult(el *Element) (ResultBlock, error) {
	var res ResultBlock

	for _, m := range el.FindAll("module") {
		name, _ := m.Attr("name")
		mod := ResultModule{Name: name}

		for _, p := range m.FindAll("status_out") {
			portName, _ := p.Attr("name")
			port := Port{Name: portName}

			for _, v := range p.FindAll("value") {
				sample, err := decodeSample(v)
				if err != nil {
					return ResultBlock{}, fmt.Errorf("%s.%s: %w", name, portName, err)
				}
				port.Samples = append(port.Samples, sample)
			}
			mod.Ports = append(mod.Ports, port)
		}
		res.Modules = append(res.Modules, mod)
	}

	return res, nil
}

func decodeSample(v *Element) (Sample, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return Sample{}, &FormatError{
			Code:    ErrCodeBadValue,
			Message: fmt.Sprintf("value %q is not a number", v.Text),
		}
	}
	s := Sample{Value: f}

	// Only the first attribute is recorded as inner dimension.
	if len(v.Attrs) > 0 {
		attr := v.Attrs[0]
		addr, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
		if err != nil {
			return Sample{}, &FormatError{
				Code:    ErrCodeBadValue,
				Message: fmt.Sprintf("dimension %s=%q is not a number", attr.Name.Local, attr.Value),
			}
		}
		s.HasDim = true
		s.DimName = attr.Name.Local
		s.DimAddr = int(math.Trunc(addr))
	}
	return s, nil
}

func instanceName(module *Element) (string, error) {
	el := module.Find(instanceNameTag)
	if el == nil {
		return "", &FormatError{Code: ErrCodeMissingSection, Message: "module without instance_name"}
	}
	return el.Text, nil
}

func findIncludingSelf(root *Element, name string) *Element {
	if root.Name == name {
		return root
	}
	return root.Find(name)
}

func findAllIncludingSelf(root *Element, name string) []*Element {
	all := root.FindAll(name)
	if root.Name == name {
		all = append([]*Element{root}, all...)
	}
	return all
}
