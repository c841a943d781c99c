package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lexicc/lexicc/internal/inbox"
	"github.com/lexicc/lexicc/internal/state"
	"github.com/lexicc/lexicc/internal/text"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [FILE|-]...",
	Short: "Queue documents for reading",
	Long: paragraph(fmt.Sprintf("\n%s documents to the inbox. Each one is written in full before it becomes visible, so a running lexicc never reads half a file. With no arguments, or with -, the document is read from stdin.", keyword("Add"))),
	Example: paragraph("lexicc add chapter1.txt chapter2.txt\npdftotext paper.pdf - | lexicc add"),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout, err := stateDirs(cfg)
		if err != nil {
			return err
		}
		dirs, err := state.Setup(layout.Root)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			args = []string{"-"}
		}

		ib := inbox.New(dirs.Inbox, text.NewNormalizer())
		for _, arg := range args {
			path, err := addDocument(ib, arg)
			if err != nil {
				return err
			}
			fmt.Println("Queued", path)
		}
		return nil
	},
}

func addDocument(ib *inbox.Inbox, arg string) (string, error) {
	var r io.Reader = os.Stdin
	if arg != "-" {
		f, err := os.Open(arg)
		if err != nil {
			return "", fmt.Errorf("unable to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	return ib.Add(arg, r)
}
