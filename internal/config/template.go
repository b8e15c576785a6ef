package config

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigTemplate returns the default config as commented YAML.
func DefaultConfigTemplate() (string, error) {
	d := Defaults()

	managed := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, id := range d.Kernels.Managed {
		managed.Content = append(managed.Content, scalar(id, ""))
	}

	root := mapping(
		section("theme", "Highlighting theme. A name containing \"dark\" selects the dark palette.",
			field("name", scalar(d.Theme.Name, "e.g. \"JupyterLab Dark\"; empty detects the terminal background")),
			field("mode", scalar(d.Theme.Mode, "\"light\", \"dark\" or empty (auto)")),
		),
		section("kernels", "Language identities written when a cell switches kernel.",
			field("default_identity", scalar(d.Kernels.DefaultIdentity, "Legend cells")),
			field("alternate_identity", scalar(d.Kernels.AlternateIdentity, "#Kernel: Python cells")),
			field("managed", withComment(managed, "cells with these identities get a kernel selector")),
		),
		section("watch", "Reload the notebook when it changes on disk.",
			field("enabled", scalar(strconv.FormatBool(d.Watch.Enabled), "")),
			field("debounce", scalar(d.Watch.Debounce.String(), "")),
		),
		section("cache", "Rendered highlight lines are cached in memory.",
			field("ttl", scalar(d.Cache.TTL.String(), "")),
		),
		section("ui", "",
			field("markdown_style", scalar(d.UI.MarkdownStyle, "\"auto\", \"dark\" or \"light\"")),
			field("word_wrap", scalar(strconv.Itoa(d.UI.WordWrap), "0 wraps markdown at the window width")),
		),
		section("tracing", "OpenTelemetry spans for kernel switches and language loads.",
			field("enabled", scalar(strconv.FormatBool(d.Tracing.Enabled), "")),
			field("exporter", scalar(d.Tracing.Exporter, "none | file | stdout | otlp")),
			field("file_path", scalar(d.Tracing.FilePath, "")),
			field("otlp_endpoint", scalar(d.Tracing.OTLPEndpoint, "")),
			field("sample_rate", scalar(strconv.FormatFloat(d.Tracing.SampleRate, 'f', 1, 64), "")),
		),
	)
	root.HeadComment = "legendnb configuration"

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("rendering config template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("rendering config template: %w", err)
	}
	return buf.String(), nil
}

type keyValue struct {
	key   *yaml.Node
	value *yaml.Node
}

func field(name string, value *yaml.Node) keyValue {
	return keyValue{key: &yaml.Node{Kind: yaml.ScalarNode, Value: name}, value: value}
}

func section(name, comment string, fields ...keyValue) keyValue {
	kv := field(name, mapping(fields...))
	kv.key.HeadComment = comment
	return kv
}

func mapping(fields ...keyValue) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		n.Content = append(n.Content, f.key, f.value)
	}
	return n
}

func scalar(value, comment string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value, LineComment: comment}
	if value == "" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func withComment(n *yaml.Node, comment string) *yaml.Node {
	n.LineComment = comment
	return n
}
