// Package main is the activityctl terminal client.
package main

import "github.com/mergington/activities/internal/cli"

func main() {
	cli.Execute()
}
