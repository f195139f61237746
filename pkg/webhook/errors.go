package webhook

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned by New when an option is unusable. Nothing
// has been bound or installed when it is returned.
type ConfigurationError struct {
	Option string
	Reason string
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("webhook: invalid %s: %s", err.Option, err.Reason)
}

func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}
