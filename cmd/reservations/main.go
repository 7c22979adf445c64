package main

import (
	"reservo/internal/notifier"
	reservationhandler "reservo/internal/reservations/handler"
	reservationrepo "reservo/internal/reservations/repository"
	resservice "reservo/internal/reservations/service"
	reservationvalidator "reservo/internal/reservations/validator"
	serieshandler "reservo/internal/series/handler"
	seriesrepo "reservo/internal/series/repository"
	seriesservice "reservo/internal/series/service"
	seriesvalidator "reservo/internal/series/validator"
	"reservo/pkg/app"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	"reservo/pkg/kafka"
	kafkaconfig "reservo/pkg/kafka/config"
	kafkamiddleware "reservo/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	clk := clock.Real{}
	events := initNotifier(cfg)

	resRepo := reservationrepo.NewMongoReservationRepository(cfg)
	slotRepo := reservationrepo.NewMongoTimeSlotRepository(cfg)
	equipmentRepo := reservationrepo.NewMongoEquipmentRepository(cfg)
	lockRepo := reservationrepo.NewEquipmentLockRepository(cfg)
	auditRepo := reservationrepo.NewMongoAuditRepository(cfg)
	sRepo := seriesrepo.NewMongoSeriesRepository(cfg)

	ids := resservice.NewIdentifierGenerator(resRepo, sRepo, cfg, clk)

	reservationSvc := resservice.NewReservationService(
		resRepo, slotRepo, equipmentRepo, lockRepo, auditRepo,
		reservationvalidator.NewReservationValidator(cfg.Log),
		ids, sRepo, events, cfg, clk,
	)
	seriesSvc := seriesservice.NewSeriesService(
		sRepo, resRepo, slotRepo, equipmentRepo, lockRepo,
		reservationSvc, seriesvalidator.NewSeriesValidator(cfg.Log),
		ids, events, cfg, clk,
	)
	equipmentSvc := resservice.NewEquipmentService(equipmentRepo, cfg)

	sweeper := resservice.NewSweeper(resRepo, cfg, clk)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		reservationhandler.NewReservationHandler(reservationSvc, cfg.Log),
		reservationhandler.NewEquipmentHandler(equipmentSvc, cfg.Log),
		serieshandler.NewSeriesHandler(seriesSvc, cfg.Log),
	)
	serverApp.RunWith(sweeper.Run)
}

func initNotifier(cfg *config.Config) notifier.Notifier {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka notifications disabled, using noop notifier")
		return notifier.NewNoop()
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.KafkaTopic, "")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())
	cfg.Log.Info("Kafka notifier initialized", "topic", cfg.KafkaTopic)
	return notifier.NewKafkaNotifier(producer, ServiceName, cfg.Log)
}
