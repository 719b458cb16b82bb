// Command tabgrove inspects and migrates tab-tree store files.
//
// Usage:
//
//	tabgrove dump <store.db>                    print the persisted tree
//	tabgrove watch <store.db>                   re-print the tree on every change
//	tabgrove export <store.db> <snapshot.json>  export to a snapshot file
//	tabgrove import <store.db> <snapshot.json>  import (replacing) from a file
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/tabgrove/tabgrove/internal/store"
	"github.com/tabgrove/tabgrove/pkg/engine"
	"github.com/tabgrove/tabgrove/pkg/model"
	"github.com/tabgrove/tabgrove/pkg/persist"
	"github.com/tabgrove/tabgrove/pkg/snapshot"
	"github.com/tabgrove/tabgrove/pkg/version"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	merge := flag.Bool("merge", false, "Merge on import instead of replacing")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tabgrove %s\n", version.Version)
		os.Exit(0)
	}
	if *help || flag.NArg() == 0 {
		usage()
		os.Exit(0)
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "dump":
		err = runDump(flag.Arg(1))
	case "watch":
		err = runWatch(flag.Arg(1))
	case "export":
		err = runExport(flag.Arg(1), flag.Arg(2))
	case "import":
		err = runImport(flag.Arg(1), flag.Arg(2), *merge)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: tabgrove [options] <command> <args>")
	fmt.Println("\nCommands:")
	fmt.Println("  dump   <store.db>                    print the persisted tree")
	fmt.Println("  watch  <store.db>                    re-print the tree on every change")
	fmt.Println("  export <store.db> <snapshot.json>    export to a snapshot file")
	fmt.Println("  import <store.db> <snapshot.json>    import from a snapshot file")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
}

// loadState opens a store file and decodes its persisted window state.
func loadState(path string) (*store.SQLiteStore, *model.WindowState, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("store path is required")
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	gw := persist.New(st, persist.DefaultKey)
	w, err := gw.Load()
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, w, nil
}

func runDump(path string) error {
	st, w, err := loadState(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return dumpState(w)
}

// runWatch dumps the tree, then re-dumps whenever another process flushes
// the store file. Runs until interrupted.
func runWatch(path string) error {
	if path == "" {
		return fmt.Errorf("store path is required")
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer st.Close()

	changes := st.Subscribe()
	if err := st.StartWatcher(); err != nil {
		return err
	}
	gw := persist.New(st, persist.DefaultKey)

	w, err := gw.Load()
	if err != nil {
		return err
	}
	if err := dumpState(w); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case <-changes:
			w, err := gw.Load()
			if err != nil {
				return err
			}
			fmt.Println("---")
			if err := dumpState(w); err != nil {
				return err
			}
		case <-interrupt:
			return nil
		}
	}
}

func dumpState(w *model.WindowState) error {
	if w == nil {
		fmt.Println("(empty store)")
		return nil
	}
	eng := engine.New(engine.WithState(w))
	for _, v := range w.Views {
		marker := " "
		if v.ID == w.CurrentViewID {
			marker = "*"
		}
		fmt.Printf("%s view %q (%d roots)\n", marker, v.Name, len(v.RootIDs))
		tree, err := eng.GetTree(v.ID)
		if err != nil {
			return err
		}
		for _, root := range tree {
			printTree(root)
		}
	}
	if len(w.Pinned) > 0 {
		fmt.Printf("pinned: %v\n", w.Pinned)
	}
	return nil
}

func printTree(n *engine.TreeNode) {
	indent := strings.Repeat("  ", n.Node.Depth+1)
	if n.Node.IsGroup() {
		fmt.Printf("%s[%s]\n", indent, n.Node.Name)
	} else {
		fmt.Printf("%stab %d\n", indent, n.Node.Ref)
	}
	for _, c := range n.Children {
		printTree(c)
	}
}

func runExport(path, out string) error {
	st, w, err := loadState(path)
	if err != nil {
		return err
	}
	defer st.Close()
	if w == nil {
		return fmt.Errorf("store %s holds no tree document", path)
	}
	if out == "" {
		return fmt.Errorf("output path is required")
	}
	if err := snapshot.WriteFile(snapshot.Export(w), out); err != nil {
		return err
	}
	fmt.Printf("Exported %d views to %s\n", len(w.Views), out)
	return nil
}

func runImport(path, in string, merge bool) error {
	if in == "" {
		return fmt.Errorf("snapshot path is required")
	}
	snap, err := snapshot.ReadFile(in)
	if err != nil {
		return err
	}

	st, w, err := loadState(path)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []engine.Option{}
	if w != nil {
		opts = append(opts, engine.WithState(w))
	}
	eng := engine.New(opts...)

	mode := snapshot.Replace
	if merge {
		mode = snapshot.Merge
	}
	if err := snapshot.Import(eng, snap, mode); err != nil {
		return err
	}
	if err := eng.State().Validate(); err != nil {
		return fmt.Errorf("imported state failed validation: %w", err)
	}

	gw := persist.New(st, persist.DefaultKey)
	gw.Enqueue(eng.State())
	if err := gw.Close(); err != nil {
		return err
	}
	fmt.Printf("Imported %d views from %s\n", len(snap.Views), in)
	return nil
}
