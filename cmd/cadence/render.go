package main

import (
	"fmt"
	"strings"

	"github.com/dshills/cadence/internal/settings"
)

// renderOptions controls which rows renderPage prints.
type renderOptions struct {
	// all includes rows hidden by their attachTo key.
	all bool
}

// renderPage renders rows in page order, one line per row plus a
// description line when present.
func renderPage(rows []settings.RowState, opts renderOptions) string {
	var sb strings.Builder

	for i, row := range rows {
		if !row.Visible && !opts.all {
			continue
		}

		common := row.Descriptor.Common()
		if _, ok := row.Descriptor.(*settings.Title); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(titleStyle.Render(common.Text))
			sb.WriteString("\n")
			continue
		}

		line := fmt.Sprintf("%s %s: %s", mutedStyle.Render(fmt.Sprintf("[%d]", i)), common.Text, renderValue(row))
		if key := boundKey(row.Descriptor); key != "" {
			line += " " + keyStyle.Render("("+key+")")
		}
		for _, b := range common.Badges {
			line += " " + badgeStyle.Render("<"+b.Markup()+">")
		}
		if !row.Visible {
			line += " " + mutedStyle.Render("hidden by "+common.AttachTo)
		}
		sb.WriteString(rowStyle.Render(line))
		sb.WriteString("\n")

		if common.Description != "" {
			sb.WriteString(rowStyle.Render("    " + mutedStyle.Render(common.Description)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderValue formats a row's current value for its variant.
func renderValue(row settings.RowState) string {
	switch d := row.Descriptor.(type) {
	case *settings.Button:
		return "[" + d.Label + "]"
	case *settings.Boolean:
		if !row.HasValue {
			return mutedStyle.Render("unset")
		}
		if b, ok := row.Value.(bool); ok && b {
			return onStyle.Render("on")
		}
		return "off"
	case *settings.Select:
		if !row.HasValue {
			return mutedStyle.Render("unset")
		}
		if label, ok := d.Label(row.Value); ok {
			return label
		}
		return fmt.Sprintf("%v", row.Value)
	case *settings.Range:
		bounds := mutedStyle.Render(fmt.Sprintf("[%g..%g]", d.Min, d.Max))
		if !row.HasValue {
			return mutedStyle.Render("unset") + " " + bounds
		}
		return fmt.Sprintf("%v %s", row.Value, bounds)
	case *settings.Input:
		if !row.HasValue {
			return mutedStyle.Render("unset")
		}
		if d.InputType == "password" {
			return "********"
		}
		return fmt.Sprintf("%q", fmt.Sprint(row.Value))
	default:
		if !row.HasValue {
			return mutedStyle.Render("unset")
		}
		return fmt.Sprint(row.Value)
	}
}

func boundKey(d settings.Descriptor) string {
	if b, ok := d.(settings.Bindable); ok {
		return b.ConfigItem()
	}
	return ""
}
