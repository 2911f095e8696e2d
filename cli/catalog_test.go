package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/petal-labs/toolgate/config"
)

// The advertised tool set is a fixed contract: names are exact and ordered
// by backend family.
var wantToolNames = []string{
	"fs_read_file",
	"fs_write_file",
	"fs_list_directory",
	"fs_create_directory",
	"fs_delete_directory",
	"fs_search_files",
	"fs_get_metadata",
	"fs_delete_file",
	"fs_copy_file",
	"fs_move_file",
	"gh_list_repositories",
	"gh_list_repo_issues",
	"gh_create_repo",
	"gh_fork_repo",
	"gh_create_issue",
	"gh_create_pr",
	"gh_search_repos",
	"gh_search_code",
	"gh_get_prs",
	"gh_review_pr",
	"gh_update_readme",
	"sentry_get_issues",
	"sentry_get_issue_details",
	"sentry_get_error_frequency",
	"sentry_get_error_patterns",
	"sentry_update_issue_status",
	"sentry_get_project_stats",
	"sentry_get_detailed_stacktrace",
	"sentry_analyze_error_patterns",
	"weather_get_current",
}

func TestBuildCatalogAdvertisesExactToolSet(t *testing.T) {
	catalog, err := buildCatalog(config.Config{})
	if err != nil {
		t.Fatalf("buildCatalog: %v", err)
	}

	if diff := cmp.Diff(wantToolNames, catalog.Names()); diff != "" {
		t.Fatalf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCatalogEveryToolIsInvocable(t *testing.T) {
	catalog, err := buildCatalog(config.Config{})
	if err != nil {
		t.Fatalf("buildCatalog: %v", err)
	}

	for _, def := range catalog.All() {
		if def.Handler == nil {
			t.Errorf("tool %s has no handler", def.Name)
		}
		if def.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
		schema := def.Schema.JSONSchema()
		if schema["type"] != "object" {
			t.Errorf("tool %s schema type = %v", def.Name, schema["type"])
		}
	}
}
