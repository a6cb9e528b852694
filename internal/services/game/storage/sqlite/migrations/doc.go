// Package migrations embeds the SQL schema of the action-log store.
package migrations
