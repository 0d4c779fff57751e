package xld

// Environment tags every request so the API routes it to the matching backend
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Valid reports whether e is one of the two accepted values.
func (e Environment) Valid() bool {
	return e == EnvDevelopment || e == EnvProduction
}

func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment converts s into an Environment.
// Only the literal values "development" and "production" are accepted.
func ParseEnvironment(s string) (Environment, error) {
	if s == "" {
		return "", &ConfigError{Field: "environment", Reason: "environment option is required"}
	}
	env := Environment(s)
	if !env.Valid() {
		return "", &ConfigError{
			Field:  "environment",
			Value:  s,
			Reason: `valid values are "development" or "production"`,
		}
	}
	return env, nil
}
