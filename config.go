package lacc

import "fmt"

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the parser.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("target.pointer_size", 8)
	m.SetBool("parser.fold_constants", true)
	m.SetBool("parser.warnings", true)
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
	}[vt]
}

type cfgVal struct {
	typ    cfgValType
	asBool bool
	asInt  int
}

// assignType is mostly for preventing programming errors
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (c Config) val(name string) *cfgVal {
	v, ok := c[name]
	if !ok {
		v = &cfgVal{}
		c[name] = v
	}
	return v
}

func (c Config) SetBool(name string, value bool) {
	v := c.val(name)
	v.assignType(cfgValType_Bool)
	v.asBool = value
}

func (c Config) SetInt(name string, value int) {
	v := c.val(name)
	v.assignType(cfgValType_Int)
	v.asInt = value
}

func (c Config) GetBool(name string) bool {
	if v, ok := c[name]; ok && v.typ == cfgValType_Bool {
		return v.asBool
	}
	return false
}

func (c Config) GetInt(name string) int {
	if v, ok := c[name]; ok && v.typ == cfgValType_Int {
		return v.asInt
	}
	return 0
}
