package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

func newTraitsCmd(a *app) *cobra.Command {
	var segment string
	cmd := &cobra.Command{
		Use:   "traits --admin-type TYPE [--segment NAME]",
		Short: "List the key mapping of an admin type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := adminTypeFlag(cmd)
			if err != nil {
				return err
			}
			keys, err := a.registry()
			if err != nil {
				return err
			}
			segments := keys.Segments(at)
			if segment != "" {
				seg, ok := keys.Segment(at, segment)
				if !ok {
					return fmt.Errorf("admin type %s has no segment %q", at, segment)
				}
				segments = []*keymap.Segment{seg}
			}
			return a.emit(traitsObject(segments))
		},
	}
	cmd.Flags().String("admin-type", "", "admin type ("+adminTypeList()+")")
	cmd.Flags().StringVar(&segment, "segment", "", "only list one segment")
	return cmd
}

// traitsObject renders segment -> raw name -> {key, trait, operators}.
func traitsObject(segments []*keymap.Segment) *document.Object {
	out := document.NewObject()
	for _, seg := range segments {
		fields := out.Child(seg.Name)
		for _, t := range seg.Traits {
			entry := document.NewObject()
			entry.Set("key", t.Key)
			entry.Set("trait", t.Type.String())
			ops := make([]string, 0, len(t.Operators))
			for _, op := range t.Operators {
				ops = append(ops, string(op))
			}
			entry.Set("operators", ops)
			fields.Set(t.Raw, entry)
		}
	}
	return out
}
