package main

import "supplier-kpi-service/internal/command"

func main() {
	command.Execute()
}
