package main

import (
	"contentful-mcp/internal/contentful"
	"contentful-mcp/internal/extract"
	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/tools"
	"contentful-mcp/internal/tools/delivery"
)

func registerDeliveryTools(registry tools.ToolRegistry, svc *delivery.Service, log *logger.Logger) error {
	log.Info("Registering delivery tools")

	if err := delivery.RegisterAll(registry, svc); err != nil {
		log.Error("Failed to register delivery tools", "error", err)
		return err
	}

	log.Info("Successfully registered delivery tools", "count", len(delivery.Registrations))
	return nil
}

func registerAllTools(registry tools.ToolRegistry, client contentful.Client, extractor *extract.Extractor, log *logger.Logger) error {
	log.Info("Registering all available tools")

	svc := delivery.NewService(client, extractor, log)
	if err := registerDeliveryTools(registry, svc, log); err != nil {
		return err
	}

	log.Info("Successfully registered all tools")
	return nil
}
