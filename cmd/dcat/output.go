package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dcat-go/internal/app"
	"dcat-go/internal/catalog"
	"dcat-go/internal/database/sqlc"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const timeLayout = "2006-01-02 15:04:05"

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatCount(n int64) string {
	return humanize.Comma(n)
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).Format(timeLayout)
}

// progressPrinter reports scan progress on one terminal line.
type progressPrinter struct {
	w io.Writer
}

var _ catalog.Observer = (*progressPrinter)(nil)

func (p *progressPrinter) ObjectsFound(n int64) {
	fmt.Fprintf(p.w, "\r%s objects found", formatCount(n))
}

func (p *progressPrinter) Reindexing() {
	fmt.Fprintln(p.w, "\rRebuilding indexes...")
}

func printDisks(disks []*sqlc.Disk) {
	if len(disks) == 0 {
		fmt.Println("No disks.")
		return
	}
	for _, d := range disks {
		where := "-"
		if d.CatalogueID.Valid {
			where = fmt.Sprintf("cat #%d", d.CatalogueID.Int64)
		}
		label := d.FsLabel
		if label == "" {
			label = "-"
		}
		fmt.Printf("#%-5d %-24s %-9s %-12s %-6s %10s  %s  %s\n",
			d.ID, d.Name, where, label, d.FsType,
			formatSize(d.FsSize), formatUnix(d.ScannedAt), d.ScanPath)
	}
}

func printBrowse(b *app.Browse) {
	fmt.Printf("%s:%s  (%d dirs, %d files, %s)\n", b.Disk.Name, b.Path,
		b.Summary.Directories, b.Summary.Files, formatSize(b.Summary.TotalSize))

	for _, d := range b.Listing.Directories {
		flags := ""
		switch {
		case d.AccessDenied:
			flags = "  [access denied]"
		case d.OtherVolume:
			flags = "  [other volume]"
		}
		fmt.Printf("d %s %-8s %-8s %10s  %s  %s/  (#%d, %d items)%s\n",
			permString(d.Permissions), d.Owner, d.Grp, "-",
			formatUnix(d.ModifiedAt), d.Name.String, d.ID, d.ItemCount, flags)
	}
	for _, f := range b.Listing.Files {
		fmt.Printf("%s %s %-8s %-8s %10s  %s  %s\n",
			kindLetter(catalog.Kind(f.Kind)), permString(f.Permissions), f.Owner, f.Grp,
			formatSize(f.Size), formatUnix(f.ModifiedAt), f.Name)
	}
}

func printHits(hits []*catalog.SearchHit) {
	for _, h := range hits {
		size := "-"
		if h.Kind != catalog.KindDirectory {
			size = formatSize(h.Size)
		}
		fmt.Printf("%s %10s  %s  %s\n", kindLetter(h.Kind), size, h.DiskName, h.FullPath)
	}
}

func printInfo(info *app.DatabaseInfo) {
	st := info.Stats
	fmt.Printf("Database:    %s (%s)\n", info.Path, formatSize(st.DatabaseBytes))
	fmt.Printf("Catalogues:  %s\n", formatCount(st.Catalogues))
	fmt.Printf("Disks:       %s\n", formatCount(st.Disks))
	fmt.Printf("Directories: %s\n", formatCount(st.Directories))
	fmt.Printf("Files:       %s (%s)\n", formatCount(st.Files), formatSize(st.TotalBytes))
	fmt.Printf("Version:     %d\n", info.Version)
	if info.RemoteVersion >= 0 {
		fmt.Printf("Snapshot:    %d\n", info.RemoteVersion)
	}
}

func printHistory(ops []*sqlc.Operation) {
	if len(ops) == 0 {
		fmt.Println("No operations recorded.")
		return
	}
	for _, op := range ops {
		duration := ""
		if op.FinishedAt.Valid {
			d := op.FinishedAt.Time.Sub(op.StartedAt)
			duration = d.Truncate(time.Millisecond).String()
		}
		fmt.Printf("#%d  %-16s  %s  %-10s  %-10s  %s\n",
			op.ID,
			op.Operation,
			op.StartedAt.Format(timeLayout),
			op.Status,
			duration,
			op.Parameters,
		)
	}
}

func kindLetter(k catalog.Kind) string {
	switch k {
	case catalog.KindDirectory:
		return "d"
	case catalog.KindSymlink:
		return "l"
	case catalog.KindOther:
		return "o"
	default:
		return "-"
	}
}

// permString renders the nine rwx permission bits.
func permString(perm int64) string {
	const letters = "rwxrwxrwx"
	var b strings.Builder
	for i := 0; i < 9; i++ {
		if perm&(1<<(8-i)) != 0 {
			b.WriteByte(letters[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// stdinLines is shared so that consecutive prompts do not lose buffered
// input when stdin is a pipe.
var stdinLines = bufio.NewReader(os.Stdin)

// readPassphrase prompts on stderr and reads without echo when stdin is a
// terminal, or reads one line otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
	line, err := stdinLines.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readNewPassphrase() (string, error) {
	p1, err := readPassphrase("New snapshot passphrase: ")
	if err != nil {
		return "", err
	}
	if p1 == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	p2, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if p1 != p2 {
		return "", fmt.Errorf("passphrases do not match")
	}
	return p1, nil
}
