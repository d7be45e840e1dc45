package postgres

import (
	"context"
	"fmt"
)

// Tables lists the application tables in creation order.
var Tables = []string{
	"users",
	"education",
	"education_content",
	"education_user_track",
	"questions",
	"question_views",
	"question_likes",
	"question_comments",
	"wholesalers",
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// CountRows returns the row count of every application table.
func CountRows(ctx context.Context, exec *Executor) ([]TableCount, error) {
	out := make([]TableCount, 0, len(Tables))
	for _, t := range Tables {
		var n int64
		if err := exec.Get(ctx, &n, "SELECT COUNT(*) FROM "+t); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t, err)
		}
		out = append(out, TableCount{Table: t, Rows: n})
	}
	return out, nil
}
