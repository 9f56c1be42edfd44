package chat

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRole indicates a conversation contains a role the target
// provider cannot express. This is a programmer/config error: correctly
// constructed conversations never trigger it, and it must fail loudly
// rather than drop the turn.
var ErrUnsupportedRole = errors.New("unsupported role for target provider")

// SplitSystem translates a conversation for providers that take the system
// prompt as a separate field and restrict the message list to user and
// assistant roles.
//
// All system turns are concatenated into one system string, separated by a
// blank line, and filtered out of the returned list. When no system turn
// exists the system string is empty. The input slice is never mutated.
func SplitSystem(messages []Message) (string, []Message, error) {
	var system string
	conversation := make([]Message, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
		case RoleUser, RoleAssistant:
			conversation = append(conversation, msg)
		default:
			return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, msg.Role)
		}
	}

	return system, conversation, nil
}

// ValidateRoles checks a conversation for providers that accept system
// turns inline. Identity translation otherwise.
func ValidateRoles(messages []Message) error {
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedRole, msg.Role)
		}
	}
	return nil
}
