package sqlite

import "github.com/Masterminds/squirrel"

// Helpers shared across repository implementations

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
