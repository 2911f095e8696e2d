package fs

import (
	"context"

	"github.com/petal-labs/toolgate/tool"
)

// Definitions returns the filesystem tool family bound to a service.
func Definitions(svc *Service) []tool.Definition {
	return []tool.Definition{
		{
			Name:        "fs_read_file",
			Description: "Reads the content of a local file.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("file_path", "Path to the file to read"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.ReadFile(args.String("file_path")), nil
			},
		},
		{
			Name:        "fs_write_file",
			Description: "Writes content to a local file.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("file_path", "Path to write the file"),
				tool.StringField("content", "Content to write"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.WriteFile(args.String("file_path"), args.String("content")), nil
			},
		},
		{
			Name:        "fs_list_directory",
			Description: "Lists files and directories in a local path.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("dir_path", "Path to the directory to list"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.ListDirectory(args.String("dir_path")), nil
			},
		},
		{
			Name:        "fs_create_directory",
			Description: "Creates a new directory and any necessary parent directories.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("dir_path", "Path of the directory to create"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.CreateDirectory(args.String("dir_path")), nil
			},
		},
		{
			Name:        "fs_delete_directory",
			Description: "Deletes a directory, optionally recursively.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("dir_path", "Path of the directory to delete"),
				tool.OptionalBoolField("recursive", "Whether to delete directory contents recursively", false),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.DeleteDirectory(args.String("dir_path"), args.Bool("recursive")), nil
			},
		},
		{
			Name:        "fs_search_files",
			Description: "Searches for files matching a pattern in a directory.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("dir_path", "Directory to search in"),
				tool.OptionalStringField("pattern", "File pattern to match (e.g., '*.txt')", "*"),
				tool.OptionalBoolField("recursive", "Whether to search recursively in subdirectories", false),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.SearchFiles(args.String("dir_path"), args.String("pattern"), args.Bool("recursive")), nil
			},
		},
		{
			Name:        "fs_get_metadata",
			Description: "Gets detailed metadata about a file.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("file_path", "Path to the file to get metadata for"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.GetMetadata(args.String("file_path")), nil
			},
		},
		{
			Name:        "fs_delete_file",
			Description: "Deletes a file.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("file_path", "Path to the file to delete"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.DeleteFile(args.String("file_path")), nil
			},
		},
		{
			Name:        "fs_copy_file",
			Description: "Copies a file from source to destination.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("src_path", "Source file path"),
				tool.StringField("dst_path", "Destination file path"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.CopyFile(args.String("src_path"), args.String("dst_path")), nil
			},
		},
		{
			Name:        "fs_move_file",
			Description: "Moves a file from source to destination.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("src_path", "Source file path"),
				tool.StringField("dst_path", "Destination file path"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return svc.MoveFile(args.String("src_path"), args.String("dst_path")), nil
			},
		},
	}
}
