package extract

type Config struct {
	Method string `envconfig:"B2T_METHOD" default:"meanpool" toml:"method" yaml:"method"`
	Window int    `envconfig:"B2T_WINDOW" default:"20" toml:"window" yaml:"window"`
	Stride int    `envconfig:"B2T_STRIDE" default:"20" toml:"stride" yaml:"stride"`
	Length int    `envconfig:"B2T_SEGMENT_LENGTH" default:"0" toml:"length" yaml:"length"`
}

func (c Config) WindowSpec() WindowSpec {
	return WindowSpec{Window: c.Window, Stride: c.Stride, Length: c.Length}
}

// Resolve validates the configuration and returns its typed form.
func (c Config) Resolve() (WindowSpec, Method, error) {
	spec := c.WindowSpec()
	if err := spec.Validate(); err != nil {
		return WindowSpec{}, "", err
	}
	m, err := ParseMethod(c.Method)
	if err != nil {
		return WindowSpec{}, "", err
	}
	return spec, m, nil
}
