package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/decoder"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// entry is one labelled node of a decoded value tree.
type entry struct {
	value any
	label string
}

// children lists the nested values of v, or nil for leaves.
func children(v any) []entry {
	switch v := v.(type) {
	case *decoder.Record:
		fields := v.Fields()
		out := make([]entry, len(fields))
		for i, f := range fields {
			out[i] = entry{label: f.Name, value: f.Value}
		}
		return out
	case []*decoder.Record:
		out := make([]entry, len(v))
		for i, r := range v {
			out[i] = entry{label: index(i), value: r}
		}
		return out
	case []any:
		out := make([]entry, len(v))
		for i, e := range v {
			out[i] = entry{label: index(i), value: e}
		}
		return out
	case []string:
		out := make([]entry, len(v))
		for i, s := range v {
			out[i] = entry{label: index(i), value: s}
		}
		return out
	}
	return nil
}

func isComposite(v any) bool {
	switch v.(type) {
	case *decoder.Record, []*decoder.Record, []any, []string:
		return true
	}
	return false
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// summary describes a composite value without its contents.
func summary(v any) string {
	switch v := v.(type) {
	case *decoder.Record:
		return typeStyle.Render(v.Schema().Name())
	case []*decoder.Record:
		return typeStyle.Render(fmt.Sprintf("%d items", len(v)))
	case []any:
		return typeStyle.Render(fmt.Sprintf("%d items", len(v)))
	case []string:
		return typeStyle.Render(fmt.Sprintf("%d strings", len(v)))
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return valueStyle.Render(strconv.Quote(v))
	case nativemap.Address:
		if v.IsNull() {
			return addrStyle.Render("null")
		}
		return addrStyle.Render(v.String())
	case float32:
		return valueStyle.Render(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		return valueStyle.Render(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return valueStyle.Render(fmt.Sprint(v))
}

// renderTree draws a decoded record as a lipgloss tree.
func renderTree(name string, addr nativemap.Address, rec *decoder.Record) string {
	t := tree.Root(titleStyle.Render(name) + " " + addrStyle.Render(addr.String())).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(helpStyle)
	addChildren(t, rec)
	return t.String()
}

func addChildren(t *tree.Tree, v any) {
	for _, e := range children(v) {
		label := nameStyle.Render(e.label)
		if !isComposite(e.value) {
			t.Child(label + " = " + formatValue(e.value))
			continue
		}
		sub := tree.Root(label + " " + summary(e.value))
		addChildren(sub, e.value)
		t.Child(sub)
	}
}

// renderLayout prints the static layout of s, one field per line.
func renderLayout(s *schema.Schema) string {
	var b strings.Builder
	info := layout.Of(s)

	fmt.Fprintf(&b, "%s size=%d align=%d stride=%d pack=%d\n",
		titleStyle.Render(s.Name()), info.Size, info.Align, info.Stride, s.DeclaredAlign())
	for i, f := range s.Fields() {
		size := layout.FieldSize(s, f, layout.StaticCount(f))
		kind := f.Kind.String()
		switch {
		case f.Target != nil:
			kind += "<" + f.Target.Name() + ">"
		case f.Elem != schema.KindInvalid:
			kind += "<" + f.Elem.String() + ">"
		}
		if f.Count.IsSet() {
			kind += "[" + f.Count.String() + "]"
		}
		fmt.Fprintf(&b, "  %5d %5d %2d  %s %s\n",
			info.Offsets[i], size, layout.FieldAlign(s, f), nameStyle.Render(f.Name), typeStyle.Render(kind))
	}
	return b.String()
}
