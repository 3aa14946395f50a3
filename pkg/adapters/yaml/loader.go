package yaml

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sawane/shiori/pkg/scenario"
)

// Loader implements ports.DocumentLoader for YAML scenario files.
type Loader struct {
	Path string
}

// NewLoader creates a loader for the given file path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load reads and parses the document.
func (l *Loader) Load(ctx context.Context) (*scenario.Document, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.Path, err)
	}
	return doc, nil
}

// yamlDocument is the raw file shape. Commands stay as untyped maps
// until decodeCommand resolves their type discriminator.
type yamlDocument struct {
	ID          string      `yaml:"id"`
	Version     string      `yaml:"version"`
	Title       string      `yaml:"title"`
	Author      string      `yaml:"author"`
	Description string      `yaml:"description"`
	Entry       string      `yaml:"entry"`
	Scenes      []yamlScene `yaml:"scenes"`
}

type yamlScene struct {
	ID              string               `yaml:"id"`
	Title           string               `yaml:"title"`
	EntryTransition *scenario.Transition `yaml:"entry_transition"`
	ExitTransition  *scenario.Transition `yaml:"exit_transition"`
	Commands        []map[string]any     `yaml:"commands"`
}

// ParseDocument decodes YAML bytes into a scenario document. Commands
// and conditions are discriminated by their "type" key.
func ParseDocument(data []byte) (*scenario.Document, error) {
	var raw yamlDocument
	if err := yamlv3.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	doc := &scenario.Document{
		ID:          raw.ID,
		Version:     raw.Version,
		Title:       raw.Title,
		Author:      raw.Author,
		Description: raw.Description,
		Entry:       raw.Entry,
		Scenes:      make(map[string]*scenario.Scene, len(raw.Scenes)),
	}

	for _, rs := range raw.Scenes {
		if rs.ID == "" {
			return nil, fmt.Errorf("scene without an id")
		}
		if doc.Scenes[rs.ID] != nil {
			return nil, fmt.Errorf("duplicate scene id %q", rs.ID)
		}
		scene := &scenario.Scene{
			ID:              rs.ID,
			Title:           rs.Title,
			EntryTransition: rs.EntryTransition,
			ExitTransition:  rs.ExitTransition,
			Commands:        make([]scenario.Command, 0, len(rs.Commands)),
		}
		for i, rc := range rs.Commands {
			cmd, err := decodeCommand(rc)
			if err != nil {
				return nil, fmt.Errorf("scene %q command %d: %w", rs.ID, i, err)
			}
			scene.Commands = append(scene.Commands, cmd)
		}
		doc.Scenes[rs.ID] = scene
	}

	return doc, nil
}

var commandDecoders map[string]func(map[string]any) (scenario.Command, error)

func init() {
	commandDecoders = map[string]func(map[string]any) (scenario.Command, error){
		"dialogue":          decodeAs[scenario.Dialogue],
		"show_background":   decodeAs[scenario.ShowBackground],
		"hide_background":   decodeAs[scenario.HideBackground],
		"show_cg":           decodeAs[scenario.ShowCG],
		"hide_cg":           decodeAs[scenario.HideCG],
		"show_character":    decodeAs[scenario.ShowCharacter],
		"hide_character":    decodeAs[scenario.HideCharacter],
		"move_character":    decodeAs[scenario.MoveCharacter],
		"change_sprite":     decodeAs[scenario.ChangeSprite],
		"change_expression": decodeAs[scenario.ChangeSprite],
		"play_bgm":          decodeAs[scenario.PlayBGM],
		"stop_bgm":          decodeAs[scenario.StopBGM],
		"play_se":           decodeAs[scenario.PlaySE],
		"play_voice":        decodeAs[scenario.PlayVoice],
		"choice":            decodeAs[scenario.ShowChoice],
		"jump":              decodeAs[scenario.Jump],
		"set_flag":          decodeAs[scenario.SetFlag],
		"set_variable":      decodeAs[scenario.SetVariable],
		"modify_variable":   decodeAs[scenario.ModifyVariable],
		"wait":              decodeAs[scenario.Wait],
		"call":              decodeAs[scenario.Call],
		"return":            decodeAs[scenario.Return],
		"if":                decodeAs[scenario.If],
		"end":               decodeAs[scenario.End],
	}
}

func decodeCommand(raw map[string]any) (scenario.Command, error) {
	kind, _ := raw["type"].(string)
	if kind == "" {
		return nil, fmt.Errorf("command has no type")
	}
	dec, ok := commandDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown command type %q", kind)
	}
	return dec(raw)
}

func decodeAs[T scenario.Command](raw map[string]any) (scenario.Command, error) {
	var cmd T
	if err := decodeInto(raw, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

var conditionDecoders map[string]func(map[string]any) (scenario.Condition, error)

func init() {
	conditionDecoders = map[string]func(map[string]any) (scenario.Condition, error){
		"flag_is": decodeCondAs[scenario.FlagIs],
		"compare": decodeCondAs[scenario.Compare],
		"all":     decodeCondAs[scenario.All],
		"any":     decodeCondAs[scenario.Any],
		"not":     decodeCondAs[scenario.Not],
		"literal": decodeCondAs[scenario.Literal],
	}
}

func decodeCondition(raw map[string]any) (scenario.Condition, error) {
	kind, _ := raw["type"].(string)
	if kind == "" {
		return nil, fmt.Errorf("condition has no type")
	}
	dec, ok := conditionDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown condition type %q", kind)
	}
	return dec(raw)
}

func decodeCondAs[T scenario.Condition](raw map[string]any) (scenario.Condition, error) {
	var cond T
	if err := decodeInto(raw, &cond); err != nil {
		return nil, err
	}
	return cond, nil
}

// decodeValue accepts either a bare scalar, with the kind inferred, or
// the explicit {type, value} form used by snapshots.
func decodeValue(raw any) (scenario.Value, error) {
	switch v := raw.(type) {
	case bool:
		return scenario.BoolValue(v), nil
	case int:
		return scenario.IntValue(int64(v)), nil
	case int64:
		return scenario.IntValue(v), nil
	case float64:
		return scenario.FloatValue(v), nil
	case string:
		return scenario.StringValue(v), nil
	case map[string]any:
		kind, _ := v["type"].(string)
		inner, err := decodeValue(v["value"])
		if err != nil {
			return scenario.Value{}, err
		}
		switch scenario.ValueKind(kind) {
		case scenario.KindBool, scenario.KindInt, scenario.KindString:
			if inner.Kind() != scenario.ValueKind(kind) {
				return scenario.Value{}, fmt.Errorf("value %v is not a %s", v["value"], kind)
			}
			return inner, nil
		case scenario.KindFloat:
			// YAML parses "1" as an int even when a float is declared.
			if inner.Kind() == scenario.KindInt {
				return scenario.FloatValue(float64(inner.Int())), nil
			}
			if inner.Kind() != scenario.KindFloat {
				return scenario.Value{}, fmt.Errorf("value %v is not a float", v["value"])
			}
			return inner, nil
		default:
			return scenario.Value{}, fmt.Errorf("unknown value type %q", kind)
		}
	default:
		return scenario.Value{}, fmt.Errorf("cannot use %T as a value", raw)
	}
}

// decodeInto maps a raw command or condition body onto its struct.
// Nested conditions, commands and values are resolved through the
// decode hook; map keys match field names with underscores ignored.
func decodeInto(raw map[string]any, out any) error {
	body := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "type" {
			body[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  decodeHook,
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(strings.ReplaceAll(mapKey, "_", ""), fieldName)
		},
	})
	if err != nil {
		return err
	}
	return dec.Decode(body)
}

var (
	commandType   = reflect.TypeOf((*scenario.Command)(nil)).Elem()
	conditionType = reflect.TypeOf((*scenario.Condition)(nil)).Elem()
	valueType     = reflect.TypeOf(scenario.Value{})
)

func decodeHook(from, to reflect.Type, data any) (any, error) {
	switch to {
	case commandType:
		m, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("command must be a mapping, got %T", data)
		}
		return decodeCommand(m)
	case conditionType:
		m, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("condition must be a mapping, got %T", data)
		}
		return decodeCondition(m)
	case valueType:
		return decodeValue(data)
	}
	return data, nil
}
