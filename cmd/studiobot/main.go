package main

import "github.com/wflores9/StudioBot.ai/internal/cli"

func main() { cli.Main() }
