// Command vsfsctl drives a vsfs volume from the shell: format, create,
// append, read, list, delete, stat/fsck and export/import.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vdiskfs/vsfs"
	"github.com/vdiskfs/vsfs/compress"
)

var diskPath string

func main() {
	root := &cobra.Command{
		Use:   "vsfsctl",
		Short: "Inspect and manipulate a vsfs virtual disk",
	}
	root.PersistentFlags().StringVar(&diskPath, "disk", "", "path to the virtual disk file")
	root.MarkPersistentFlagRequired("disk")

	root.AddCommand(
		formatCmd(),
		mountShellCmd(),
		createCmd(),
		appendCmd(),
		catCmd(),
		lsCmd(),
		rmCmd(),
		statCmd(),
		fsckCmd(),
		exportCmd(),
		importCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vsfsctl:", err)
		os.Exit(1)
	}
}

// withVolume mounts diskPath, runs fn, and always unmounts afterward.
func withVolume(fn func(v *vsfs.Volume) error) error {
	v, err := vsfs.Mount(diskPath)
	if err != nil {
		return err
	}
	defer v.Unmount()
	return fn(v)
}

func formatCmd() *cobra.Command {
	var shift int
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Create a new virtual disk of size 2^shift bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return vsfs.Format(diskPath, uint(shift))
		},
	}
	cmd.Flags().IntVar(&shift, "shift", 20, "volume size as a power of two (18-23)")
	return cmd
}

// mountShellCmd keeps one volume mounted across a whole line-oriented
// session, so commands that need to stay open across each other (a create
// immediately followed by an append to the same fd, several reads against
// one handle) don't pay a Mount/Unmount round trip per line the way every
// other subcommand here does.
func mountShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount-shell",
		Short: "Mount once and run create/append/cat/ls/rm/stat commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(runMountShell)
		},
	}
}

func runMountShell(v *vsfs.Volume) error {
	open := map[string]int{}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := runMountShellLine(v, open, fields); err != nil {
			fmt.Fprintln(os.Stderr, "vsfsctl:", err)
		}
	}
	return scanner.Err()
}

func runMountShellLine(v *vsfs.Volume, open map[string]int, fields []string) error {
	switch fields[0] {
	case "create":
		if len(fields) != 2 {
			return fmt.Errorf("usage: create <name>")
		}
		return v.Create(fields[1])

	case "open":
		if len(fields) != 3 {
			return fmt.Errorf("usage: open <name> <read|append>")
		}
		mode := vsfs.ModeRead
		if fields[2] == "append" {
			mode = vsfs.ModeAppend
		}
		fd, err := v.Open(fields[1], mode)
		if err != nil {
			return err
		}
		open[fields[1]] = fd
		fmt.Printf("opened %s as fd %d\n", fields[1], fd)
		return nil

	case "append":
		if len(fields) < 3 {
			return fmt.Errorf("usage: append <name> <text...>")
		}
		fd, ok := open[fields[1]]
		if !ok {
			return fmt.Errorf("%s is not open", fields[1])
		}
		text := strings.Join(fields[2:], " ")
		_, err := v.Append(fd, []byte(text), len(text))
		return err

	case "cat":
		if len(fields) != 2 {
			return fmt.Errorf("usage: cat <name>")
		}
		fd, ok := open[fields[1]]
		if !ok {
			return fmt.Errorf("%s is not open", fields[1])
		}
		size, err := v.Size(fd)
		if err != nil {
			return err
		}
		buf := make([]byte, size)
		if size > 0 {
			if _, err := v.Read(fd, buf, size); err != nil {
				return err
			}
		}
		fmt.Println(string(buf))
		return nil

	case "close":
		if len(fields) != 2 {
			return fmt.Errorf("usage: close <name>")
		}
		fd, ok := open[fields[1]]
		if !ok {
			return fmt.Errorf("%s is not open", fields[1])
		}
		delete(open, fields[1])
		return v.Close(fd)

	case "rm":
		if len(fields) != 2 {
			return fmt.Errorf("usage: rm <name>")
		}
		delete(open, fields[1])
		return v.Delete(fields[1])

	case "ls":
		files, err := v.ListFiles()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%10d  %s\n", f.Size, f.Name)
		}
		return nil

	case "stat":
		s, err := v.Stat()
		if err != nil {
			return err
		}
		fmt.Printf("total=%d data=%d free=%d files=%d\n", s.TotalBlocks, s.DataBlocks, s.FreeBlocks, s.FileCount)
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				return v.Create(args[0])
			})
		},
	}
}

func appendCmd() *cobra.Command {
	var fromFile string
	cmd := &cobra.Command{
		Use:   "append <name>",
		Short: "Append stdin (or --from) to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if fromFile != "" {
				data, err = os.ReadFile(fromFile)
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}
			return withVolume(func(v *vsfs.Volume) error {
				fd, err := v.Open(args[0], vsfs.ModeAppend)
				if err != nil {
					return err
				}
				defer v.Close(fd)
				_, err = v.Append(fd, data, len(data))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&fromFile, "from", "", "read data from this host file instead of stdin")
	return cmd
}

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <name>",
		Short: "Print a file's contents to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				fd, err := v.Open(args[0], vsfs.ModeRead)
				if err != nil {
					return err
				}
				defer v.Close(fd)

				size, err := v.Size(fd)
				if err != nil {
					return err
				}
				buf := make([]byte, size)
				if size > 0 {
					if _, err := v.Read(fd, buf, size); err != nil {
						return err
					}
				}
				_, err = os.Stdout.Write(buf)
				return err
			})
		},
	}
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List every file on the volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				files, err := v.ListFiles()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Printf("%10d  %s\n", f.Size, f.Name)
				}
				return nil
			})
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				return v.Delete(args[0])
			})
		},
	}
}

func statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Print the volume's superblock counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				s, err := v.Stat()
				if err != nil {
					return err
				}
				fmt.Printf("total blocks:  %d\n", s.TotalBlocks)
				fmt.Printf("data blocks:   %d\n", s.DataBlocks)
				fmt.Printf("free blocks:   %d\n", s.FreeBlocks)
				fmt.Printf("file count:    %d\n", s.FileCount)
				return nil
			})
		},
	}
}

func fsckCmd() *cobra.Command {
	var reclaim bool
	cmd := &cobra.Command{
		Use:   "fsck",
		Short: "Check (and optionally reclaim leaked blocks from) the volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *vsfs.Volume) error {
				if reclaim {
					n, err := v.Reclaim()
					if err != nil {
						return err
					}
					fmt.Printf("reclaimed %d block(s)\n", n)
					return nil
				}
				report, err := v.Fsck()
				if err != nil {
					return err
				}
				fmt.Printf("consistent: %v\n", report.Consistent)
				fmt.Printf("computed free blocks: %d\n", report.ComputedFreeBlocks)
				if len(report.OrphanedBlocks) > 0 {
					fmt.Printf("orphaned blocks: %v\n", report.OrphanedBlocks)
				}
				if len(report.DuplicateNames) > 0 {
					fmt.Printf("duplicate names: %v\n", report.DuplicateNames)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reclaim, "reclaim", false, "free orphaned blocks found by the check")
	return cmd
}

func exportCmd() *cobra.Command {
	var algo string
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every file on the volume to a single archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := compress.ParseAlgorithm(algo)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return withVolume(func(v *vsfs.Volume) error {
				return v.Export(f, a)
			})
		},
	}
	cmd.Flags().StringVar(&algo, "compress", "gzip", "none|gzip|xz|zstd")
	cmd.Flags().StringVar(&out, "out", "", "archive output path")
	cmd.MarkFlagRequired("out")
	return cmd
}

func importCmd() *cobra.Command {
	var algo string
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Recreate files from an archive written by export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := compress.ParseAlgorithm(algo)
			if err != nil {
				return err
			}
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			return withVolume(func(v *vsfs.Volume) error {
				return v.Import(f, a)
			})
		},
	}
	cmd.Flags().StringVar(&algo, "compress", "gzip", "none|gzip|xz|zstd")
	cmd.Flags().StringVar(&in, "in", "", "archive input path")
	cmd.MarkFlagRequired("in")
	return cmd
}
