package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	disko "github.com/Belalaskaik/Simple-File-System"
	"github.com/Belalaskaik/Simple-File-System/disk"
	"github.com/Belalaskaik/Simple-File-System/filesystem"
)

// RunShell opens or creates the disk image at path and drives an
// interactive read-line loop over the driver's commands: debug, format,
// mount, create, remove, stat, cat, copyin, copyout, help, exit/quit.
// Parsing, printing, and the loop itself are deliberately kept out of the
// filesystem package — the core has no notion of a command line.
func RunShell(path string, blocks uint32) error {
	d, err := disk.Open(path, blocks)
	if err != nil {
		return err
	}
	defer d.Close()

	var fs *filesystem.FileSystem

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("simplefs> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("simplefs> ")
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "debug":
			if err := filesystem.Debug(d); err != nil {
				fmt.Println("debug failed:", err)
			}

		case "format":
			if err := filesystem.Format(d); err != nil {
				fmt.Println("format failed:", err)
			}

		case "mount":
			fs, err = filesystem.Mount(d)
			if err != nil {
				fmt.Println("mount failed:", err)
				fs = nil
			}

		case "create":
			if !requireMount(fs) {
				break
			}
			inode := fs.Create()
			if inode < 0 {
				fmt.Println("create failed: no free inodes")
				break
			}
			fmt.Println("created inode", inode)

		case "remove":
			if !requireMount(fs) || len(fields) != 2 {
				fmt.Println("usage: remove <inode>")
				break
			}
			inodeNumber, err := parseInode(fields[1])
			if err != nil {
				fmt.Println(err)
				break
			}
			if !fs.Remove(inodeNumber) {
				fmt.Println("remove failed")
			}

		case "stat":
			if !requireMount(fs) || len(fields) != 2 {
				fmt.Println("usage: stat <inode>")
				break
			}
			inodeNumber, err := parseInode(fields[1])
			if err != nil {
				fmt.Println(err)
				break
			}
			size := fs.Stat(inodeNumber)
			if size < 0 {
				fmt.Println("stat failed")
				break
			}
			fmt.Printf("inode %d: %d bytes\n", inodeNumber, size)

		case "cat":
			if !requireMount(fs) || len(fields) != 2 {
				fmt.Println("usage: cat <inode>")
				break
			}
			inodeNumber, err := parseInode(fields[1])
			if err != nil {
				fmt.Println(err)
				break
			}
			data, err := readWholeInode(fs, inodeNumber)
			if err != nil {
				fmt.Println("cat failed:", err)
				break
			}
			os.Stdout.Write(data)
			fmt.Println()

		case "copyin":
			if !requireMount(fs) || len(fields) != 3 {
				fmt.Println("usage: copyin <host-path> <inode>")
				break
			}
			inodeNumber, err := parseInode(fields[2])
			if err != nil {
				fmt.Println(err)
				break
			}
			if err := copyIn(fs, fields[1], inodeNumber); err != nil {
				fmt.Println("copyin failed:", err)
			}

		case "copyout":
			if !requireMount(fs) || len(fields) != 3 {
				fmt.Println("usage: copyout <inode> <host-path>")
				break
			}
			inodeNumber, err := parseInode(fields[1])
			if err != nil {
				fmt.Println(err)
				break
			}
			if err := copyOut(fs, inodeNumber, fields[2]); err != nil {
				fmt.Println("copyout failed:", err)
			}

		case "help":
			printHelp()

		case "exit", "quit":
			if fs != nil {
				fs.Unmount()
			}
			return nil

		default:
			fmt.Println("unknown command:", fields[0])
		}

		fmt.Print("simplefs> ")
	}

	if fs != nil {
		fs.Unmount()
	}
	return scanner.Err()
}

func requireMount(fs *filesystem.FileSystem) bool {
	if fs == nil {
		fmt.Println("no file system mounted")
		return false
	}
	return true
}

func parseInode(token string) (uint32, error) {
	n, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid inode number %q", token)
	}
	return uint32(n), nil
}

// readWholeInode reads an inode's entire contents with a single Read call
// sized to the inode's Stat result; it exists only for the shell's
// cat/copyout.
func readWholeInode(fs *filesystem.FileSystem, inodeNumber uint32) ([]byte, error) {
	size := fs.Stat(inodeNumber)
	if size < 0 {
		return nil, fmt.Errorf("no such inode")
	}

	data := make([]byte, size)
	if size == 0 {
		return data, nil
	}

	n := fs.Read(inodeNumber, data, uint32(size), 0)
	if n < 0 {
		return nil, fmt.Errorf("read failed")
	}
	return data[:n], nil
}

func copyOut(fs *filesystem.FileSystem, inodeNumber uint32, hostPath string) error {
	data, err := readWholeInode(fs, inodeNumber)
	if err != nil {
		return err
	}
	return os.WriteFile(hostPath, data, 0644)
}

func copyIn(fs *filesystem.FileSystem, hostPath string, inodeNumber uint32) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}
	if uint64(len(data)) > uint64(filesystem.MaxFileSize) {
		return fmt.Errorf("file too large for a single inode (max %d bytes)", filesystem.MaxFileSize)
	}

	written := 0
	for written < len(data) {
		chunk := len(data) - written
		if chunk > disko.BlockSize {
			chunk = disko.BlockSize
		}
		n := fs.Write(inodeNumber, data[written:written+chunk], uint32(chunk), uint32(written))
		if n < 0 {
			return fmt.Errorf("write failed after %d bytes", written)
		}
		written += int(n)
	}
	return nil
}

func printHelp() {
	fmt.Println(`commands:
  debug                         show superblock and inode table contents
  format                        create a fresh file system on the disk
  mount                         mount the file system
  create                        allocate a new, empty inode
  remove <inode>                free an inode and its data
  stat <inode>                  print an inode's size
  cat <inode>                   print an inode's contents to stdout
  copyin <host-path> <inode>    copy a host file's contents into an inode
  copyout <inode> <host-path>   copy an inode's contents to a host file
  help                          show this message
  exit, quit                    unmount (if mounted) and exit`)
}
