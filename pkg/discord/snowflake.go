package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const DiscordEpoch = 1420070400000

// Snowflake is a Discord identifier. It is carried around as the decimal string
// Discord uses on the wire; nothing in this module does arithmetic on it.
type Snowflake string

func (s Snowflake) String() string {
	return string(s)
}

func (s Snowflake) Empty() bool {
	return s == ""
}

// UnmarshalJSON accepts the usual quoted form as well as a bare JSON number,
// which some senders emit. Numbers are kept digit for digit, never passed
// through float64. null leaves s empty.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Snowflake(str)
		return nil
	}
	if _, err := strconv.ParseUint(string(data), 10, 64); err != nil {
		return fmt.Errorf("snowflake: %s is neither a string nor an unsigned integer", data)
	}
	*s = Snowflake(data)
	return nil
}

func (s Snowflake) Validate() error {
	return ValidateSnowflake(string(s))
}

// CreatedAt decodes the creation timestamp packed into the top 42 bits.
func (s Snowflake) CreatedAt() (time.Time, error) {
	num, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	ms := int64(num>>22) + DiscordEpoch
	return time.UnixMilli(ms).UTC(), nil
}

func ValidateSnowflake(snowflake string) error {
	if snowflake == "" {
		return errors.New("empty string")
	}

	num, err := strconv.ParseUint(snowflake, 10, 64)
	if err != nil {
		return err
	}

	if num < DiscordEpoch {
		return errors.New("too small (prior to discord epoch)")
	}

	return nil
}
