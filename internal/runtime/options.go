package runtime

type ServiceOption func(*ServiceCtx)

func WithWaitingForServer() ServiceOption {
	return func(c *ServiceCtx) {
		c.serverReady = make(chan struct{})
	}
}

// WithDependencyOptions applies extra dependency options after the defaults,
// letting callers replace individual components.
func WithDependencyOptions(opts ...DependencyOption) ServiceOption {
	return func(c *ServiceCtx) {
		c.depOptions = append(c.depOptions, opts...)
	}
}
