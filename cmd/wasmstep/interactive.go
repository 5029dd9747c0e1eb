package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wasmleaf/gowasm"
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// Styles mirror wippyai-wasm-runtime/cmd/run/interactive.go's palette —
// the same picker/params/result panes, restyled around rt.Value instead
// of WIT types since this engine has no component-model layer.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type funcInfo struct {
	name    string
	params  []ast.ValueType
	results []ast.ValueType
}

type interactiveModel struct {
	err      error
	store    *rt.Store
	ref      rt.ModuleRef
	inst     *rt.ModuleInstance
	demoName string
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

func newInteractiveModel(d demo) *interactiveModel {
	store := rt.NewStore()
	ref, inst, err := gowasm.Initialize(nil, d.module, rt.Names{}, store)
	m := &interactiveModel{store: store, ref: ref, inst: inst, demoName: d.name, err: err}
	if err != nil {
		return m
	}
	for _, exp := range d.module.Exports {
		if exp.Type != ast.ExternTypeFunc {
			continue
		}
		ft := inst.Types[funcTypeIdxOf(d.module, exp.Index)]
		m.funcs = append(m.funcs, funcInfo{name: exp.Name, params: ft.Params, results: ft.Results})
	}
	return m
}

func funcTypeIdxOf(m *ast.Module, funcIdx ast.Index) ast.Index {
	return m.Funcs[funcIdx].TypeIdx
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == stateInputArgs {
			var cmds []tea.Cmd
			for i := range m.inputs {
				var cmd tea.Cmd
				m.inputs[i], cmd = m.inputs[i].Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.state == stateSelectFunc && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
			m.selected++
		}

	case "enter":
		switch m.state {
		case stateSelectFunc:
			m.prepareInputs()
			if len(m.inputs) == 0 {
				m.call()
			} else {
				m.state = stateInputArgs
			}
		case stateInputArgs:
			m.call()
		case stateShowResult:
			m.state = stateSelectFunc
			m.result = ""
			m.err = nil
		}

	case "tab":
		if m.state == stateInputArgs && len(m.inputs) > 1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}

	case "esc":
		switch m.state {
		case stateInputArgs:
			m.state = stateSelectFunc
			m.inputs = nil
		case stateShowResult:
			m.state = stateSelectFunc
			m.result = ""
			m.err = nil
		}
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.params))
	for i, p := range f.params {
		ti := textinput.New()
		ti.Placeholder = p.String()
		ti.Prompt = fmt.Sprintf("arg%d (%s): ", i, p)
		ti.Width = 30
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) call() {
	f := m.funcs[m.selected]
	args := make([]rt.Value, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseValue(f.params[i], input.Value())
		if err != nil {
			m.err = err
			m.state = stateShowResult
			return
		}
		args[i] = v
	}
	results, err := gowasm.InvokeByName(m.store, m.ref, m.inst, f.name, args)
	m.err = err
	if err == nil {
		m.result = formatResults(results)
	}
	m.state = stateShowResult
}

func parseValue(t ast.ValueType, s string) (rt.Value, error) {
	switch t {
	case ast.ValueTypeI32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return rt.Value{}, fmt.Errorf("parse i32 arg %q: %w", s, err)
		}
		return rt.I32(int32(v)), nil
	case ast.ValueTypeI64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return rt.Value{}, fmt.Errorf("parse i64 arg %q: %w", s, err)
		}
		return rt.I64(v), nil
	case ast.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return rt.Value{}, fmt.Errorf("parse f32 arg %q: %w", s, err)
		}
		return rt.F32(float32(v)), nil
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return rt.Value{}, fmt.Errorf("parse f64 arg %q: %w", s, err)
		}
		return rt.F64(v), nil
	}
}

func formatResults(vs []rt.Value) string {
	if len(vs) == 0 {
		return "(no results)"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmstep"))
	b.WriteString(" ")
	b.WriteString(m.demoName)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an exported function to invoke:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			line := cursor + m.formatFunc(f)
			if i == m.selected {
				line = selectedStyle.Render("> " + m.formatFunc(f))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down select - enter call - q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field - enter call - esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.name)))
		if m.err != nil {
			if ee, ok := asEvalError(m.err); ok {
				b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %s", ee.Kind, ee.Msg)))
			} else {
				b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			}
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue - q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = typeStyle.Render(p.String())
	}
	result := ""
	if len(f.results) > 0 {
		result = " -> " + typeStyle.Render(f.results[0].String())
	}
	return funcStyle.Render(f.name) + "(" + strings.Join(params, ", ") + ")" + result
}

func asEvalError(err error) (*rt.EvalError, bool) {
	var ee *rt.EvalError
	ok := errors.As(err, &ee)
	return ee, ok
}

func runInteractive(d demo) error {
	p := tea.NewProgram(newInteractiveModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
