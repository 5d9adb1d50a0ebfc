// Package twig is a single-user version-control engine: a content-addressed
// blob store, an immutable commit graph, a staging index, branches, a
// three-way merge and synchronization with remote repositories.
//
// A Repository lives in a flat working directory with its storage in
// ".twig". One invocation opens it, runs one operation and saves the
// whole state back as a single snapshot.
//
// Basic usage:
//
//	repo, _ := twig.Init(".")
//	defer repo.Close()
//
//	// Stage and commit a file
//	repo.Add("notes.txt")
//	repo.Commit("add notes")
//
//	// Branch and merge
//	repo.CreateBranch("topic")
//	repo.CheckoutBranch("topic")
//	res, _ := repo.Merge("master")
//	if res.ConflictNotice {
//	    fmt.Println("Encountered a merge conflict.")
//	}
//
//	// Persist
//	repo.Save()
//
// With remotes:
//
//	repo.AddRemote("origin", "../other/.twig")
//	repo.AddRemote("backup", "oci:/srv/twig/notes")
//	repo.Fetch(ctx, "origin", "master")
//	repo.Push(ctx, "backup", "master")
package twig
