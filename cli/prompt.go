package cli

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"
)

// PromptConfirm asks a yes/no question. Answering no (or aborting) returns false.
func PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
