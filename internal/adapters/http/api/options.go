package api

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	env           string
	mentorLimit   int
	allowedOrigin string
}

// WithEnv sets the environment name reported by /health.
func WithEnv(env string) Option {
	return func(c *serverConfig) {
		if env != "" {
			c.env = env
		}
	}
}

// WithMentorLimit caps the mentor queue length. Zero means unlimited.
func WithMentorLimit(n int) Option {
	return func(c *serverConfig) {
		if n >= 0 {
			c.mentorLimit = n
		}
	}
}

// WithAllowedOrigin sets the Access-Control-Allow-Origin value. An empty
// origin disables CORS headers.
func WithAllowedOrigin(origin string) Option {
	return func(c *serverConfig) { c.allowedOrigin = origin }
}
