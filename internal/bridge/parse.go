package bridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// NoRulesViolation is the violation reported for a document without any rule.
const NoRulesViolation = "no bridge configurations specified"

// ParseError reports a bridge config that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse bridge config: %v", e.Err)
	}
	return fmt.Sprintf("parse bridge config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError lists every problem found in a decodable bridge config.
type ValidationError struct {
	Path       string
	Violations []string
}

func (e *ValidationError) Error() string {
	head := "bridge config validation failed"
	if e.Path != "" {
		head += " (" + e.Path + ")"
	}
	return head + ":\n  - " + strings.Join(e.Violations, "\n  - ")
}

// Raw document shape. Field names follow the external format.

type document struct {
	OneWay []ruleDoc   `yaml:"OneWay" validate:"dive"`
	TwoWay []ruleDoc   `yaml:"TwoWay" validate:"dive"`
	Reply  []replyDoc  `yaml:"Reply" validate:"dive"`
	Config *generalDoc `yaml:"Config"`
}

type endpointDoc struct {
	Side       string `yaml:"side" validate:"oneof=err discord"`
	Identifier string `yaml:"identifier" validate:"required"`
}

type destinationDoc struct {
	Side            string `yaml:"side" validate:"oneof=err discord"`
	Identifier      string `yaml:"identifier" validate:"required"`
	AllowImages     *bool  `yaml:"allow_images"`
	AllowLinks      *bool  `yaml:"allow_links"`
	AllowThreads    *bool  `yaml:"allow_threads"`
	MessageTemplate string `yaml:"message_template" validate:"msgtemplate"`
}

type ruleDoc struct {
	Source      endpointDoc    `yaml:"source"`
	Destination destinationDoc `yaml:"destination"`
}

type replyDoc struct {
	Source      endpointDoc    `yaml:"source"`
	Destination destinationDoc `yaml:"destination"`
	ReplyMode   string         `yaml:"reply_mode" validate:"oneof=thread direct"`
}

type generalDoc struct {
	IgnoreMessagesFromSelf *bool `yaml:"ignore_messages_from_self"`
	IgnoreAllBots          *bool `yaml:"ignore_all_bots"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return yamlName(f)
	})
	v.RegisterValidation("msgtemplate", func(fl validator.FieldLevel) bool {
		_, err := ParseTemplate(fl.Field().String())
		return err == nil
	})
	return v
}

// LoadFile reads and validates the bridge config at path. Files ending in
// .json or .jsonc may carry comments and trailing commas.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		var pe *ParseError
		var ve *ValidationError
		switch {
		case errors.As(err, &pe):
			pe.Path = path
		case errors.As(err, &ve):
			ve.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadBytes decodes a YAML (or JSON) bridge document and validates it.
func LoadBytes(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	return parse(raw)
}

// Parse validates a loosely-typed document and builds a Config. Every
// violation is collected; on failure the error is a *ValidationError.
func Parse(doc map[string]any) (*Config, error) {
	return parse(doc)
}

func parse(raw any) (*Config, error) {
	if _, ok := mappingEntries(raw); !ok && raw != nil {
		return nil, &ValidationError{Violations: []string{"document must be a mapping of OneWay, TwoWay, Reply and Config"}}
	}

	var d document
	dec := &decoder{}
	dec.value(raw, reflect.ValueOf(&d).Elem(), "")
	violations := dec.violations

	d.applyDefaults()
	if err := validate.Struct(&d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate bridge config: %w", err)
		}
		for _, fe := range fieldErrs {
			path, msg := describe(fe)
			if dec.covers(path) {
				continue
			}
			violations = append(violations, path+": "+msg)
		}
	}

	if len(d.OneWay)+len(d.TwoWay)+len(d.Reply) == 0 {
		violations = append(violations, NoRulesViolation)
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return d.build(), nil
}

func describe(fe validator.FieldError) (path, msg string) {
	path = fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return path, "must not be empty"
	case "oneof":
		return path, fmt.Sprintf("invalid value %q (must be one of: %s)", fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "msgtemplate":
		_, err := ParseTemplate(fmt.Sprint(fe.Value()))
		return path, fmt.Sprintf("invalid message template: %v", err)
	default:
		return path, fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func (d *document) applyDefaults() {
	for i := range d.OneWay {
		d.OneWay[i].Source.normalize(SideErr)
		d.OneWay[i].Destination.normalize()
	}
	for i := range d.TwoWay {
		d.TwoWay[i].Source.normalize(SideErr)
		d.TwoWay[i].Destination.normalize()
	}
	for i := range d.Reply {
		d.Reply[i].Source.normalize(SideErr)
		d.Reply[i].Destination.normalize()
		if d.Reply[i].ReplyMode == "" {
			d.Reply[i].ReplyMode = string(ReplyDirect)
		}
	}
}

func (e *endpointDoc) normalize(def Side) {
	e.Identifier = strings.TrimSpace(e.Identifier)
	if e.Side == "" {
		e.Side = string(def)
	}
}

func (d *destinationDoc) normalize() {
	d.Identifier = strings.TrimSpace(d.Identifier)
	if d.Side == "" {
		d.Side = string(SideDiscord)
	}
	if d.MessageTemplate == "" {
		d.MessageTemplate = DefaultTemplate
	}
}

func (d *document) build() *Config {
	cfg := &Config{General: DefaultGeneralConfig()}
	for _, r := range d.OneWay {
		cfg.OneWay = append(cfg.OneWay, OneWayRule{Source: r.Source.endpoint(), Destination: r.Destination.options()})
	}
	for _, r := range d.TwoWay {
		cfg.TwoWay = append(cfg.TwoWay, TwoWayRule{Source: r.Source.endpoint(), Destination: r.Destination.options()})
	}
	for _, r := range d.Reply {
		cfg.Reply = append(cfg.Reply, ReplyRule{
			Source:      r.Source.endpoint(),
			Destination: r.Destination.options(),
			Mode:        ReplyMode(r.ReplyMode),
		})
	}
	if g := d.Config; g != nil {
		if g.IgnoreMessagesFromSelf != nil {
			cfg.General.IgnoreMessagesFromSelf = *g.IgnoreMessagesFromSelf
		}
		if g.IgnoreAllBots != nil {
			cfg.General.IgnoreAllBots = *g.IgnoreAllBots
		}
	}
	return cfg
}

func (e endpointDoc) endpoint() Endpoint {
	return Endpoint{Side: Side(e.Side), Identifier: e.Identifier}
}

func (d destinationDoc) options() DestinationOptions {
	return DestinationOptions{
		Side:            Side(d.Side),
		Identifier:      d.Identifier,
		AllowImages:     boolOr(d.AllowImages, true),
		AllowLinks:      boolOr(d.AllowLinks, true),
		AllowThreads:    boolOr(d.AllowThreads, true),
		MessageTemplate: MustParseTemplate(d.MessageTemplate),
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
