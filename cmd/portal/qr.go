package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reloop/portal/internal/qr"
)

func newQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Decode or print bag QR codes",
	}

	var size int
	encode := &cobra.Command{
		Use:   "encode <payload> <out.png>",
		Short: "Write a QR code PNG for a bag payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := qr.Encode(args[0], size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}
	encode.Flags().IntVar(&size, "size", 256, "image size in pixels")

	decode := &cobra.Command{
		Use:   "decode <image>",
		Short: "Print the payload of the QR code in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			payload, err := qr.Decode(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}
