package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("prompt not found")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrFolderExists        = errors.New("folder with this name already exists")
	ErrImmutable           = errors.New("system prompt templates cannot be modified")
	ErrInvalidVariableKind = errors.New("invalid variable kind")
	ErrInvalidInput        = errors.New("invalid input")
)

type InvalidKindError struct {
	VariableID string
	Kind       VariableKind
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("variable %q: invalid kind %q", e.VariableID, e.Kind)
}

func (e *InvalidKindError) Is(target error) bool { return target == ErrInvalidVariableKind }
